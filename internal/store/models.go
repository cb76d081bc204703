// Package store provides database abstraction for persisting graph
// algorithm run records and their results.
package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Algorithm identifies which graph algorithm a run executed.
type Algorithm string

const (
	AlgorithmBFS          Algorithm = "bfs"
	AlgorithmSSSP         Algorithm = "sssp"
	AlgorithmKCore        Algorithm = "kcore"
	AlgorithmSCC          Algorithm = "scc"
	AlgorithmBCC          Algorithm = "bcc"
	AlgorithmConnectivity Algorithm = "connectivity"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run represents the run table: one row per algorithm invocation.
type Run struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID     string    `gorm:"column:run_uuid;type:varchar(64);uniqueIndex"`
	Algorithm   Algorithm `gorm:"column:algorithm;type:varchar(32)"`
	Status      Status    `gorm:"column:status;type:varchar(16)"`
	GraphPath   string    `gorm:"column:graph_path;type:varchar(512)"`
	Params      JSONField `gorm:"column:params;type:json"`
	Result      JSONField `gorm:"column:result;type:json"`
	ErrorInfo   string    `gorm:"column:error_info;type:text"`
	VertexCount int64     `gorm:"column:vertex_count"`
	EdgeCount   int64     `gorm:"column:edge_count"`
	CreateTime  time.Time `gorm:"column:create_time;autoCreateTime"`
	BeginTime   *time.Time `gorm:"column:begin_time"`
	EndTime     *time.Time `gorm:"column:end_time"`
}

// TableName returns the table name for Run.
func (Run) TableName() string {
	return "run"
}

// RunSummary is the externally-facing, JSON-decoded view of a Run.
type RunSummary struct {
	RunUUID     string          `json:"run_uuid"`
	Algorithm   Algorithm       `json:"algorithm"`
	Status      Status          `json:"status"`
	GraphPath   string          `json:"graph_path"`
	Params      json.RawMessage `json:"params,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorInfo   string          `json:"error_info,omitempty"`
	VertexCount int64           `json:"vertex_count"`
	EdgeCount   int64           `json:"edge_count"`
	CreateTime  time.Time       `json:"create_time"`
	BeginTime   *time.Time      `json:"begin_time,omitempty"`
	EndTime     *time.Time      `json:"end_time,omitempty"`
}

// ToSummary converts a Run row into its externally-facing view.
func (r *Run) ToSummary() *RunSummary {
	return &RunSummary{
		RunUUID:     r.RunUUID,
		Algorithm:   r.Algorithm,
		Status:      r.Status,
		GraphPath:   r.GraphPath,
		Params:      json.RawMessage(r.Params),
		Result:      json.RawMessage(r.Result),
		ErrorInfo:   r.ErrorInfo,
		VertexCount: r.VertexCount,
		EdgeCount:   r.EdgeCount,
		CreateTime:  r.CreateTime,
		BeginTime:   r.BeginTime,
		EndTime:     r.EndTime,
	}
}

// JSONField is a custom type for handling JSON columns in GORM.
type JSONField []byte

// Value implements driver.Valuer.
func (j JSONField) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner.
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = []byte(v)
		return nil
	default:
		return errors.New("unsupported type for JSONField")
	}
}

// MarshalJSON implements json.Marshaler.
func (j JSONField) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (j *JSONField) UnmarshalJSON(data []byte) error {
	if data == nil || string(data) == "null" {
		*j = nil
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

// RunStore defines the interface for run persistence.
type RunStore interface {
	// CreateRun inserts a new pending run.
	CreateRun(ctx context.Context, run *Run) error

	// GetRunByUUID retrieves a run by its UUID.
	GetRunByUUID(ctx context.Context, uuid string) (*Run, error)

	// UpdateStatus transitions a run's status, optionally attaching error info.
	UpdateStatus(ctx context.Context, uuid string, status Status, errInfo string) error

	// CompleteRun marks a run completed and stores its result payload.
	CompleteRun(ctx context.Context, uuid string, result JSONField) error

	// ListRuns returns the most recent runs, optionally filtered by algorithm.
	ListRuns(ctx context.Context, algorithm Algorithm, limit int) ([]*Run, error)
}

// GormRunStore implements RunStore using GORM.
type GormRunStore struct {
	db *gorm.DB
}

// NewGormRunStore creates a new GormRunStore.
func NewGormRunStore(db *gorm.DB) *GormRunStore {
	return &GormRunStore{db: db}
}

// CreateRun inserts a new pending run.
func (s *GormRunStore) CreateRun(ctx context.Context, run *Run) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// GetRunByUUID retrieves a run by its UUID.
func (s *GormRunStore) GetRunByUUID(ctx context.Context, uuid string) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).Where("run_uuid = ?", uuid).First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("run not found: %s", uuid)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// UpdateStatus transitions a run's status, optionally attaching error info.
func (s *GormRunStore) UpdateStatus(ctx context.Context, uuid string, status Status, errInfo string) error {
	updates := map[string]interface{}{"status": status}
	if errInfo != "" {
		updates["error_info"] = errInfo
	}
	if status == StatusRunning {
		now := timeNow()
		updates["begin_time"] = now
	}
	result := s.db.WithContext(ctx).Model(&Run{}).Where("run_uuid = ?", uuid).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update run status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("run not found: %s", uuid)
	}
	return nil
}

// CompleteRun marks a run completed and stores its result payload.
func (s *GormRunStore) CompleteRun(ctx context.Context, uuid string, result JSONField) error {
	now := timeNow()
	updates := map[string]interface{}{
		"status":   StatusCompleted,
		"result":   result,
		"end_time": now,
	}
	res := s.db.WithContext(ctx).Model(&Run{}).Where("run_uuid = ?", uuid).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to complete run: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("run not found: %s", uuid)
	}
	return nil
}

// ListRuns returns the most recent runs, optionally filtered by algorithm.
func (s *GormRunStore) ListRuns(ctx context.Context, algorithm Algorithm, limit int) ([]*Run, error) {
	var runs []*Run
	q := s.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if algorithm != "" {
		q = q.Where("algorithm = ?", algorithm)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func timeNow() *time.Time {
	t := time.Now()
	return &t
}
