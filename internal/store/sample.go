package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Sample represents a recorded pose sample stored in the database.
type Sample struct {
	ID          int64           `json:"id"`
	PoseID      string          `json:"pose_id"`
	SampleIndex int             `json:"sample_index"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SampleRepository provides CRUD operations for pose samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Append adds samples after the ones already recorded for a pose and
// returns the new total.
func (r *SampleRepository) Append(poseID string, samples []json.RawMessage) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM pose_samples WHERE pose_id = ?`, poseID).Scan(&existing); err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO pose_samples (pose_id, sample_index, data) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, data := range samples {
		if _, err := stmt.Exec(poseID, existing+i, string(data)); err != nil {
			return 0, err
		}
	}

	total := existing + len(samples)
	result, err := tx.Exec(`UPDATE poses SET samples = ?, updated_at = ? WHERE id = ?`, total, time.Now(), poseID)
	if err != nil {
		return 0, err
	}
	if err := requireAffected(result); err != nil {
		return 0, err
	}

	return total, tx.Commit()
}

// GetByPoseID retrieves all samples for a given pose.
func (r *SampleRepository) GetByPoseID(poseID string) ([]Sample, error) {
	rows, err := r.db.Query(
		`SELECT id, pose_id, sample_index, data, created_at
		 FROM pose_samples
		 WHERE pose_id = ?
		 ORDER BY sample_index`,
		poseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var data string
		if err := rows.Scan(&s.ID, &s.PoseID, &s.SampleIndex, &data, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Data = json.RawMessage(data)
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// DeleteByPoseID removes all samples for a given pose.
func (r *SampleRepository) DeleteByPoseID(poseID string) error {
	_, err := r.db.Exec(`DELETE FROM pose_samples WHERE pose_id = ?`, poseID)
	return err
}
