package model

import (
	"encoding/json"

	"github.com/YuminosukeSato/scisvm/pkg/errors"
)

// SnapshotVersion is written into every Snapshot and checked on restore.
const SnapshotVersion = "1"

// Snapshot はソルバーの学習結果をシリアライズするための封筒
//
// Payload の中身はバックエンド固有で、Backend.Restore だけが解釈する。
type Snapshot struct {
	// ModelType はバックエンド名（"svc" など）
	ModelType string `json:"model_type"`

	// Version は互換性チェック用
	Version string `json:"version"`

	// Params は学習時のカーネル設定
	Params KernelParams `json:"params"`

	// Payload はバックエンド固有の学習済み状態
	Payload json.RawMessage `json:"payload"`

	// IsFitted は学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// ToJSON は Snapshot を JSON にシリアライズする
func (s *Snapshot) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// FromJSON は JSON から Snapshot を復元し、検証する
func (s *Snapshot) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, s); err != nil {
		return errors.Wrap(err, "failed to decode snapshot")
	}
	return s.Validate()
}

// Validate は Snapshot の妥当性を検証する
func (s *Snapshot) Validate() error {
	if s.ModelType == "" {
		return errors.NewValidationError("model_type", "is required", s.ModelType)
	}
	if s.Version != SnapshotVersion {
		return errors.NewValidationError("version", "unsupported snapshot version", s.Version)
	}
	if !s.IsFitted {
		return errors.NewNotFittedError(s.ModelType, "Restore")
	}
	if len(s.Payload) == 0 {
		return errors.NewValidationError("payload", "is empty", nil)
	}
	return nil
}
