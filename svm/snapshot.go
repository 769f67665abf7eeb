package svm

import (
	"encoding/json"

	"github.com/YuminosukeSato/scisvm/core/model"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/YuminosukeSato/scisvm/pkg/log"
)

type svcState struct {
	Classes        []int       `json:"classes"`
	Gamma          float64     `json:"gamma"`
	NFeatures      int         `json:"n_features"`
	NSamples       int         `json:"n_samples"`
	SupportVectors [][]float64 `json:"support_vectors"`
	Machines       []machine   `json:"machines"`
}

// MarshalJSON writes a model.Snapshot wrapping the fitted state.
func (s *SVC) MarshalJSON() ([]byte, error) {
	if err := s.state.RequireFitted("SVC", "MarshalJSON"); err != nil {
		return nil, err
	}
	nFeatures, nSamples := s.state.GetDimensions()
	payload, err := json.Marshal(svcState{
		Classes:        s.classes,
		Gamma:          s.kernel.gamma,
		NFeatures:      nFeatures,
		NSamples:       nSamples,
		SupportVectors: s.supportVectors,
		Machines:       s.machines,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode svc state")
	}
	snap := model.Snapshot{
		ModelType: ModelType,
		Version:   model.SnapshotVersion,
		Params:    s.params,
		Payload:   payload,
		IsFitted:  true,
	}
	return snap.ToJSON()
}

// UnmarshalJSON restores a fitted SVC from MarshalJSON output.
func (s *SVC) UnmarshalJSON(data []byte) error {
	var snap model.Snapshot
	if err := snap.FromJSON(data); err != nil {
		return err
	}
	if snap.ModelType != ModelType {
		return errors.NewValidationError("model_type", "not an svc snapshot", snap.ModelType)
	}
	var st svcState
	if err := json.Unmarshal(snap.Payload, &st); err != nil {
		return errors.Wrap(err, "failed to decode svc state")
	}
	if len(st.Classes) < 2 || st.NFeatures < 1 {
		return errors.NewValidationError("payload", "incomplete svc state", len(st.Classes))
	}
	for _, m := range st.Machines {
		if len(m.SV) != len(m.Coef) {
			return errors.NewValidationError("payload", "support vector and coefficient counts differ", len(m.SV))
		}
		for _, sv := range m.SV {
			if sv < 0 || sv >= len(st.SupportVectors) {
				return errors.NewValidationError("payload", "support vector index out of range", sv)
			}
		}
	}

	if s.state == nil {
		s.state = model.NewStateManager()
	}
	if s.tol == 0 {
		s.tol = defaultTol
	}
	s.params = snap.Params
	s.classes = st.Classes
	s.supportVectors = st.SupportVectors
	s.machines = st.Machines
	s.kernel = kernelFunc{
		kind:   snap.Params.Kernel,
		gamma:  st.Gamma,
		degree: snap.Params.Degree,
		coef0:  snap.Params.Coef0,
	}
	s.state.SetFitted(st.NFeatures, st.NSamples)
	return nil
}

// Restore rebuilds a fitted SVC from a snapshot.
func Restore(snapshot []byte, opts ...Option) (*SVC, error) {
	s := &SVC{state: model.NewStateManager(), tol: defaultTol, maxSamples: DefaultMaxSamples}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.UnmarshalJSON(snapshot); err != nil {
		return nil, err
	}
	if s.logger == nil {
		s.logger = log.GetLogger()
	}
	return s, nil
}
