package model

import (
	"encoding/base64"
	"fmt"
)

// Asset is a reference image fed to image synthesis, either seeded from
// the remote reference library or uploaded by the operator.
type Asset struct {
	ID        string
	Name      string
	MIME      string
	Data      []byte
	SourceURL string
	IsDefault bool
}

// DataURI renders the asset bytes as an inline data URI.
func (a Asset) DataURI() string {
	if len(a.Data) == 0 {
		return ""
	}
	mime := a.MIME
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(a.Data))
}
