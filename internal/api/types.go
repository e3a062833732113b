package api

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/samcharles93/cadenza/internal/history"
	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/tensor"
)

type CreateRunRequest struct {
	Config json.RawMessage `json:"config"`
}

type RunResponse struct {
	ID        string   `json:"id"`
	Object    string   `json:"object"`
	Name      string   `json:"name,omitempty"`
	Step      int64    `json:"step"`
	Injectors []string `json:"injectors"`
}

type StepRequest struct {
	Steps  int                   `json:"steps"`
	Inputs map[string]InputValue `json:"inputs"`
}

// InputValue is a seed value in a step request: either a bare number
// (scalar) or {"shape": [...], "data": [...]} (tensor).
type InputValue struct {
	Value state.Value
}

type tensorPayload struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

func (v *InputValue) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		v.Value = state.ScalarValue(f)
		return nil
	}
	var tp tensorPayload
	if err := json.Unmarshal(data, &tp); err != nil {
		return fmt.Errorf("input must be a number or {shape, data}: %w", err)
	}
	t, err := tensor.FromData(tp.Data, tp.Shape...)
	if err != nil {
		return err
	}
	v.Value = state.TensorValue(t)
	return nil
}

type StepResponse struct {
	RunID     string             `json:"run_id"`
	Object    string             `json:"object"`
	Step      int64              `json:"step"`
	Scalars   map[string]float64 `json:"scalars"`
	Tensors   map[string][]int   `json:"tensors"`
	Sequences map[string]int     `json:"sequences,omitempty"`
}

type HistoryResponse struct {
	RunID  string          `json:"run_id"`
	Object string          `json:"object"`
	Key    string          `json:"key"`
	Points []history.Point `json:"points"`
}

type DeleteResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type InjectorsResponse struct {
	Object string   `json:"object"`
	Data   []string `json:"data"`
}

type ResponseError struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Param   string `json:"param,omitempty"`
}

func summarizeState(runID string, step int64, st state.State) StepResponse {
	resp := StepResponse{
		RunID:   runID,
		Object:  "run.step",
		Step:    step,
		Scalars: make(map[string]float64),
		Tensors: make(map[string][]int),
	}
	for key, v := range st {
		switch v.Kind() {
		case state.KindScalar:
			resp.Scalars[key], _ = v.AsScalar()
		case state.KindTensor:
			t, _ := v.AsTensor()
			resp.Tensors[key] = t.Shape()
		case state.KindSequence:
			seq, _ := v.AsSequence()
			if resp.Sequences == nil {
				resp.Sequences = make(map[string]int)
			}
			resp.Sequences[key] = len(seq)
		}
	}
	return resp
}
