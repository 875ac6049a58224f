package usecases

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"
	"time"
)

// FilenameTemplateData holds the template variables available for
// generated file names.
type FilenameTemplateData struct {
	Year   string
	Month  string
	Day    string
	Hour   string
	Minute string
	Second string
}

// RenderFilename executes tmpl for t.
func RenderFilename(tmpl string, t time.Time) (string, error) {
	parsed, err := template.New("filename").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("invalid filename template: %w", err)
	}

	data := FilenameTemplateData{
		Year:   t.Format("2006"),
		Month:  t.Format("01"),
		Day:    t.Format("02"),
		Hour:   t.Format("15"),
		Minute: t.Format("04"),
		Second: t.Format("05"),
	}

	var buf bytes.Buffer
	if err := parsed.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing filename template: %w", err)
	}
	if buf.Len() == 0 {
		return "", fmt.Errorf("filename template %q rendered an empty name", tmpl)
	}
	return buf.String(), nil
}

// OutputBase returns {folder}/{filename} without extension. An empty
// filename is generated from tmpl and now.
func OutputBase(folder, filename, tmpl string, now time.Time) (string, error) {
	if filename == "" {
		name, err := RenderFilename(tmpl, now)
		if err != nil {
			return "", err
		}
		filename = name
	}
	return filepath.Join(folder, filename), nil
}

// StreamPath names the temporary file of one stream ("video" or "audio").
func StreamPath(base, stream, format string) string {
	return fmt.Sprintf("%s.%s.%s", base, stream, format)
}
