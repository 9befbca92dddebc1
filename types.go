package citadel

import "time"

// Episode is a podcast episode stored in the database and served on the
// public podcast page.
type Episode struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoURL    string    `json:"video_url"`
	Slug        string    `json:"slug"`
	Notes       string    `json:"notes"`
	OrderIndex  int       `json:"order_index"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EpisodePatch is the set of episode fields an admin update may touch.
// Nil fields are left unchanged; this struct is the update allow-list.
type EpisodePatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	VideoURL    *string `json:"video_url"`
	Slug        *string `json:"slug"`
	Notes       *string `json:"notes"`
	OrderIndex  *int    `json:"order_index"`
	Published   *bool   `json:"published"`
}

// Project is a project or internship entry. Kind discriminates the two
// ("project" or "internship") and is exposed as "type" in JSON.
type Project struct {
	ID             int64     `json:"id"`
	Kind           string    `json:"type"`
	Company        string    `json:"company"`
	Role           string    `json:"role"`
	Period         string    `json:"period"`
	Description    string    `json:"description"`
	Details        string    `json:"details"`
	Tags           []string  `json:"tags"`
	Slug           string    `json:"slug"`
	ContactEmail   string    `json:"contact_email"`
	ContactSubject string    `json:"contact_subject"`
	OrderIndex     int       `json:"order_index"`
	Published      bool      `json:"published"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProjectPatch is the update allow-list for projects.
type ProjectPatch struct {
	Kind           *string   `json:"type"`
	Company        *string   `json:"company"`
	Role           *string   `json:"role"`
	Period         *string   `json:"period"`
	Description    *string   `json:"description"`
	Details        *string   `json:"details"`
	Tags           *[]string `json:"tags"`
	Slug           *string   `json:"slug"`
	ContactEmail   *string   `json:"contact_email"`
	ContactSubject *string   `json:"contact_subject"`
	OrderIndex     *int      `json:"order_index"`
	Published      *bool     `json:"published"`
}

// Image is the metadata row for an uploaded file. Filename is a
// server-generated token; the blob lives under the uploads directory.
type Image struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	URL          string    `json:"url"`
	AltText      string    `json:"alt_text"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// ContentBlock is a freeform editable snippet keyed by (page, section).
type ContentBlock struct {
	ID        int64     `json:"id"`
	Page      string    `json:"page"`
	Section   string    `json:"section"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderUpdate assigns a new order_index to one row during a reorder.
type OrderUpdate struct {
	ID         int64 `json:"id"`
	OrderIndex int   `json:"order_index"`
}
