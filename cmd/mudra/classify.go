package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/sink"
	"github.com/ayusman/mudra/internal/stabilizer"
)

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <frames.json>",
		Short: "Run recorded landmark frames through a session and print the result",
		Long: `Reads a JSON array of frames. Each frame is an array of hands and each
hand is {"landmarks": [21 x {"x","y","z"}], "handedness": "Left"|"Right"}.
Prints one JSON line per frame with the slot states and emitted events.
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			return classify(cmd.OutOrStdout(), in, cfg, logging.Component(logger, "classify"))
		},
	}
}

type frameLine struct {
	Frame  int                     `json:"frame"`
	Slots  []stabilizer.SlotReport `json:"slots"`
	Events []json.RawMessage       `json:"events"`
	Error  string                  `json:"error,omitempty"`
}

// classify replays frames read from r through a fresh session and writes one
// line per frame to w.
func classify(w io.Writer, r io.Reader, cfg config.Config, log *logrus.Entry) error {
	var raw [][]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return fmt.Errorf("parse frames: %w", err)
	}

	rules, err := gesture.RulesFor(cfg.Gesture.Vocabulary, cfg.Gesture.Thresholds)
	if err != nil {
		return err
	}
	classifier := gesture.New(cfg.Gesture.Thresholds, rules)

	session, err := stabilizer.NewSession(cfg.Stability, classifier, stabilizer.NewRecorder(true), log)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for i, frame := range raw {
		line := frameLine{Frame: i, Events: []json.RawMessage{}}

		hands, err := parseFrame(frame)
		if err != nil {
			// A broken frame is skipped like the live pipeline does.
			line.Error = err.Error()
			if err := enc.Encode(line); err != nil {
				return err
			}
			continue
		}

		res, err := session.Process(hands)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		line.Slots = res.Slots
		for _, ev := range res.Events {
			data, err := sink.Encode(ev)
			if err != nil {
				return err
			}
			line.Events = append(line.Events, data)
		}

		if err := enc.Encode(line); err != nil {
			return err
		}
	}

	log.WithField("frames", len(raw)).Debug("Classified recording")
	return nil
}

func parseFrame(frame []json.RawMessage) ([]detector.HandLandmarks, error) {
	hands := make([]detector.HandLandmarks, 0, len(frame))
	for j, h := range frame {
		hand, err := gesture.ParseSample(h)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", j, err)
		}
		hands = append(hands, hand)
	}
	return hands, nil
}
