package models

type UploadResponse struct {
	ID            string `json:"id"`
	ApplicationID string `json:"application_id"`
	Filename      string `json:"filename"`
	OriginalName  string `json:"original_name"`
	Format        string `json:"format"`
}

type AnalyzeRequest struct {
	DocumentID string                `json:"document_id" validate:"required,uuid"`
	Profile    JobRequirementProfile `json:"profile" validate:"required"`
}

type AnalyzeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ResultResponse struct {
	JobID        string          `json:"job_id"`
	Status       string          `json:"status"`
	Attempts     int             `json:"attempts"`
	Result       *AnalysisResult `json:"result,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}
