// Package api holds the JSON payloads exchanged between the docme client
// and server. Timestamps travel as RFC 3339 strings with nanoseconds.
package api

import "time"

type Folder struct {
	UUID             string    `json:"uuid"`
	Name             string    `json:"name"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	Deleted          bool      `json:"deleted"`
	ParentFolderUUID *string   `json:"parentFolderUUID,omitempty"`
}

type Field struct {
	UUID  string `json:"uuid"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Document struct {
	UUID  string `json:"uuid"`
	Title string `json:"title"`
	// ImagePath is the server storage key of the document image.
	ImagePath *string `json:"imagePath,omitempty"`
	// RemoteImageURL is a time-limited download link issued by the server.
	RemoteImageURL *string   `json:"remoteImageURL,omitempty"`
	Icon           string    `json:"icon"`
	Color          string    `json:"color"`
	Description    *string   `json:"description,omitempty"`
	IsFavorite     bool      `json:"isFavorite"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Deleted        bool      `json:"deleted"`
	FolderUUID     *string   `json:"folderUUID,omitempty"`
	Fields         []Field   `json:"fields"`
}

var (
	Icons  = []string{"passport", "driver", "government", "international", "tag"}
	Colors = []string{"none", "red", "green", "yellow"}
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message string `json:"message"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type User struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
}

type UserResponse struct {
	Data User `json:"data"`
}

// ImageUpload tells the client where to PUT an image and which key to send
// back as the document's imagePath.
type ImageUpload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
