package dto

// ScreenshotQuery is the raw, client-supplied search filter before
// canonicalization.
type ScreenshotQuery struct {
	Query     string   `form:"q"`
	Tags      []string `form:"tags"`
	DateFrom  string   `form:"date_from"`
	DateTo    string   `form:"date_to"`
	Limit     int      `form:"limit"`
	Offset    int      `form:"offset"`
	SortBy    string   `form:"sort_by"`
	SortOrder string   `form:"sort_order"`
}

// CreateScreenshotRequest carries the metadata accompanying an upload.
type CreateScreenshotRequest struct {
	TakenAt    string `form:"taken_at"`
	DeviceType string `form:"device_type" binding:"omitempty,max=100"`
	SourceApp  string `form:"source_app" binding:"omitempty,max=100"`
}

// AttachTagsRequest lists the tags to attach to a screenshot.
type AttachTagsRequest struct {
	TagIDs []string `json:"tag_ids" binding:"required,min=1,dive,uuid"`
}

// TriggerOcrRequest controls OCR re-processing.
type TriggerOcrRequest struct {
	Force bool `json:"force"`
}

// CreateTagRequest contains tag creation data.
type CreateTagRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=50"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
	IsSystemTag bool   `json:"is_system_tag"`
}

// UpdateTagRequest contains tag update data.
type UpdateTagRequest struct {
	Name  *string `json:"name,omitempty" binding:"omitempty,min=1,max=50"`
	Color *string `json:"color,omitempty" binding:"omitempty,hexcolor"`
}
