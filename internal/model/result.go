package model

// PipelineResult bundles everything one processCase invocation produced.
// Success is false when any step short-circuited; Error then says why.
type PipelineResult struct {
	Success        bool            `json:"success"`
	CaseID         string          `json:"case_id"`
	Case           *Case           `json:"case_data,omitempty"`
	Context        string          `json:"processed_context,omitempty"`
	Classification *Classification `json:"classification,omitempty"`
	Decision       *Decision       `json:"decision_record,omitempty"`
	Error          string          `json:"error,omitempty"`
}
