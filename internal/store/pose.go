package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// Pose is a user-defined gesture. Landmarks hold the trained template in
// normalized hand space and stay empty until samples are recorded.
type Pose struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Tolerance float64            `json:"tolerance"`
	Samples   int                `json:"samples"`
	Landmarks []detector.Point3D `json:"landmarks,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Trained reports whether the pose has a template to match against.
func (p *Pose) Trained() bool {
	return len(p.Landmarks) == detector.NumLandmarks
}

// PoseRepository provides CRUD operations for poses.
type PoseRepository struct {
	db *sql.DB
}

// Poses returns the pose repository for this store.
func (s *Store) Poses() *PoseRepository {
	return &PoseRepository{db: s.db}
}

const poseColumns = `id, name, tolerance, samples, landmarks, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPose(row rowScanner) (*Pose, error) {
	p := &Pose{}
	var landmarks sql.NullString

	if err := row.Scan(&p.ID, &p.Name, &p.Tolerance, &p.Samples, &landmarks, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if landmarks.Valid && landmarks.String != "" {
		if err := json.Unmarshal([]byte(landmarks.String), &p.Landmarks); err != nil {
			return nil, fmt.Errorf("decode landmarks of pose %s: %w", p.ID, err)
		}
	}
	return p, nil
}

func encodeLandmarks(points []detector.Point3D) (sql.NullString, error) {
	if len(points) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(points)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// Create inserts a new pose into the database.
func (r *PoseRepository) Create(p *Pose) error {
	landmarks, err := encodeLandmarks(p.Landmarks)
	if err != nil {
		return err
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err = r.db.Exec(
		`INSERT INTO poses (`+poseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Tolerance, p.Samples, landmarks, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a pose by its ID.
func (r *PoseRepository) GetByID(id string) (*Pose, error) {
	p, err := scanPose(r.db.QueryRow(`SELECT `+poseColumns+` FROM poses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// GetByName retrieves a pose by its name.
func (r *PoseRepository) GetByName(name string) (*Pose, error) {
	p, err := scanPose(r.db.QueryRow(`SELECT `+poseColumns+` FROM poses WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// List retrieves all poses, oldest first so template priority is stable.
func (r *PoseRepository) List() ([]*Pose, error) {
	rows, err := r.db.Query(`SELECT ` + poseColumns + ` FROM poses ORDER BY created_at, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var poses []*Pose
	for rows.Next() {
		p, err := scanPose(rows)
		if err != nil {
			return nil, err
		}
		poses = append(poses, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return poses, nil
}

// Update updates name and tolerance of an existing pose.
func (r *PoseRepository) Update(p *Pose) error {
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE poses SET name = ?, tolerance = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Tolerance, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// SetTemplate stores the trained landmarks and sample count of a pose.
func (r *PoseRepository) SetTemplate(id string, landmarks []detector.Point3D, samples int) error {
	encoded, err := encodeLandmarks(landmarks)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(
		`UPDATE poses SET landmarks = ?, samples = ?, updated_at = ? WHERE id = ?`,
		encoded, samples, time.Now(), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Delete removes a pose and its samples.
func (r *PoseRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM poses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
