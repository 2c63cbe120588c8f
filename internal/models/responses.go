package models

import "time"

// URLResolver turns a storage key into a public URL.
type URLResolver func(key string) string

// TagResponse is the public shape of a Tag.
type TagResponse struct {
	Name    string `json:"name"`
	ScrapID uint   `json:"scrap_id"`
}

// ScrapResponse is the public shape of a Scrap with its aggregate counts.
type ScrapResponse struct {
	ID           uint          `json:"id"`
	User         string        `json:"user"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	TimePosted   time.Time     `json:"time_posted"`
	TimeUpdated  time.Time     `json:"time_updated"`
	FileURL      string        `json:"file_url"`
	FileType     string        `json:"file_type"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty"`
	Tags         []TagResponse `json:"tags"`
	NumComments  int64         `json:"num_comments"`
	NumLikes     int64         `json:"num_likes"`
}

// CommentResponse is the public shape of a Comment with its aggregate counts.
type CommentResponse struct {
	ID          uint      `json:"id"`
	Content     string    `json:"content"`
	User        string    `json:"user"`
	TimePosted  time.Time `json:"time_posted"`
	TimeUpdated time.Time `json:"time_updated"`
	ScrapID     uint      `json:"scrap_id"`
	ReplyToID   *uint     `json:"reply_to_id"`
	NumReplies  int64     `json:"num_replies"`
	NumLikes    int64     `json:"num_likes"`
}

// ProfileResponse is the public shape of a Profile.
type ProfileResponse struct {
	Username          string `json:"username"`
	DisplayName       string `json:"display_name"`
	Description       string `json:"description"`
	ProfilePictureURL string `json:"profile_picture_url"`
	NumScraps         int64  `json:"num_scraps"`
}

// ToResponse serializes a tag.
func (t *Tag) ToResponse() TagResponse {
	return TagResponse{Name: t.Name, ScrapID: t.ScrapID}
}

// ToResponse serializes a scrap. User and Tags must be loaded.
func (s *Scrap) ToResponse(urlFor URLResolver) ScrapResponse {
	tags := make([]TagResponse, 0, len(s.Tags))
	for i := range s.Tags {
		tags = append(tags, s.Tags[i].ToResponse())
	}
	resp := ScrapResponse{
		ID:          s.ID,
		User:        s.User.Username,
		Title:       s.Title,
		Description: s.Description,
		TimePosted:  s.TimePosted,
		TimeUpdated: s.TimeUpdated,
		FileURL:     urlFor(s.FilePath),
		FileType:    s.FileType,
		Tags:        tags,
		NumComments: s.NumComments,
		NumLikes:    s.NumLikes,
	}
	if s.ThumbnailPath != "" {
		resp.ThumbnailURL = urlFor(s.ThumbnailPath)
	}
	return resp
}

// ToResponse serializes a comment. User must be loaded.
func (c *Comment) ToResponse() CommentResponse {
	return CommentResponse{
		ID:          c.ID,
		Content:     c.Content,
		User:        c.User.Username,
		TimePosted:  c.TimePosted,
		TimeUpdated: c.TimeUpdated,
		ScrapID:     c.ScrapID,
		ReplyToID:   c.ReplyToID,
		NumReplies:  c.NumReplies,
		NumLikes:    c.NumLikes,
	}
}

// ToResponse serializes a profile. User must be loaded.
func (p *Profile) ToResponse(urlFor URLResolver) ProfileResponse {
	return ProfileResponse{
		Username:          p.User.Username,
		DisplayName:       p.DisplayName,
		Description:       p.Description,
		ProfilePictureURL: urlFor(p.PictureKey()),
		NumScraps:         p.NumScraps,
	}
}

// ScrapResponses serializes a slice of scraps, never returning nil.
func ScrapResponses(scraps []*Scrap, urlFor URLResolver) []ScrapResponse {
	out := make([]ScrapResponse, 0, len(scraps))
	for _, s := range scraps {
		out = append(out, s.ToResponse(urlFor))
	}
	return out
}

// CommentResponses serializes a slice of comments, never returning nil.
func CommentResponses(comments []*Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, c.ToResponse())
	}
	return out
}
