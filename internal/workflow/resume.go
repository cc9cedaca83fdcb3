package workflow

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/internal/storage"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

// ResumeFile is an open resume ready to stream. The caller closes Body.
type ResumeFile struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

// ResumeDownload opens the stored resume of an application. Storage
// failures are reported as ErrDependencyFailure; no substitute content is
// ever produced.
func (s *Service) ResumeDownload(ctx context.Context, caller models.Identity, applicationID uuid.UUID) (*ResumeFile, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	v, err := s.store.GetApplicationView(ctx, applicationID)
	if err != nil {
		return nil, storeError(err, "application")
	}
	if v.ResumeURL == nil || *v.ResumeURL == "" {
		return nil, ErrNoResume
	}

	body, err := s.files.Open(ctx, *v.ResumeURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependencyFailure, err)
	}
	return &ResumeFile{
		Filename:    resumeFilename(v),
		ContentType: storage.ResumeContentType,
		Body:        body,
	}, nil
}

// resumeFilename builds "<candidate>_Resume.pdf" from the candidate's name,
// keeping letters and digits only.
func resumeFilename(v *models.ApplicationView) string {
	base := candidateName(v)
	if base == unknownCandidate {
		base, _, _ = strings.Cut(v.CandidateEmail, "@")
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range base {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	name := strings.TrimRight(b.String(), "_")
	if name == "" {
		name = "Candidate"
	}
	return name + "_Resume.pdf"
}
