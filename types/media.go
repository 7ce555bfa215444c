package types

// DownloadedMedia is the output of the fetch stage
type DownloadedMedia struct {
	Videos []string `json:"videos"`
	Music  string   `json:"music"`
}

// CreatedVideo is the output of the synthesize stage
type CreatedVideo struct {
	VideoPath string `json:"videoPath"`
	Script    string `json:"script"`
	Title     string `json:"title"`
}

// VideoMetadata holds the upload metadata derived from a script
type VideoMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CategoryID  string   `json:"categoryId"`
}

// Topic is an optional theme used to seed script generation
type Topic struct {
	Title   string `json:"title"`
	Link    string `json:"link,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
}
