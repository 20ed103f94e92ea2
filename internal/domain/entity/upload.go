package entity

import "io"

// VideoUpload is the client-supplied video for one analysis request.
type VideoUpload struct {
	Filename string
	Body     io.Reader
}
