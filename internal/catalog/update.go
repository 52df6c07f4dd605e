package catalog

import "fmt"

// Update lists the fields a status change may merge into a record.
// Nil fields are left untouched.
type Update struct {
	DownloadURL    *string
	LocalPath      *string
	CoverLocalPath *string
	DriveLink      *string
	CoverDriveLink *string
}

// Str returns a pointer to s, for building an Update.
func Str(s string) *string { return &s }

// Empty reports whether the update carries no fields.
func (u Update) Empty() bool {
	return u.DownloadURL == nil && u.LocalPath == nil && u.CoverLocalPath == nil &&
		u.DriveLink == nil && u.CoverDriveLink == nil
}

// validate checks the merged result of applying u to r under status.
// Paths only exist for completed records, and links only for records whose
// book file is on disk.
func (u Update) validate(r BookRecord, status Status) error {
	merged := r
	u.apply(&merged)

	if status != StatusCompleted {
		if u.LocalPath != nil && *u.LocalPath != "" {
			return fmt.Errorf("%w: local_path requires status %s", ErrInvalidUpdate, StatusCompleted)
		}
		if u.CoverLocalPath != nil && *u.CoverLocalPath != "" {
			return fmt.Errorf("%w: cover_local_path requires status %s", ErrInvalidUpdate, StatusCompleted)
		}
	}
	if (u.DriveLink != nil && *u.DriveLink != "") || (u.CoverDriveLink != nil && *u.CoverDriveLink != "") {
		if status != StatusCompleted || merged.LocalPath == "" {
			return fmt.Errorf("%w: cloud links require a completed record with local_path", ErrInvalidUpdate)
		}
	}
	return nil
}

func (u Update) apply(r *BookRecord) {
	if u.DownloadURL != nil {
		r.DownloadURL = *u.DownloadURL
	}
	if u.LocalPath != nil {
		r.LocalPath = *u.LocalPath
	}
	if u.CoverLocalPath != nil {
		r.CoverLocalPath = *u.CoverLocalPath
	}
	if u.DriveLink != nil {
		r.DriveLink = *u.DriveLink
	}
	if u.CoverDriveLink != nil {
		r.CoverDriveLink = *u.CoverDriveLink
	}
}
