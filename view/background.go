package view

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"strings"
)

// LoadBackground reads an image once and returns a CSS declaration that
// embeds it as a data URL under a dark overlay.
func LoadBackground(path string) (template.CSS, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mime := http.DetectContentType(raw)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", path, mime)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	return template.CSS(fmt.Sprintf(
		`background-image: linear-gradient(rgba(0,0,0,0.65), rgba(0,0,0,0.65)), url("data:%s;base64,%s"); background-size: cover; background-position: center;`,
		mime, encoded)), nil
}
