package catalog

import "strings"

// BookRecord is one tracked book and its download/upload state.
//
// The csv tags list the current column name first; later names are legacy
// headers still accepted when reading hand-edited files.
type BookRecord struct {
	ID             string  `csv:"id" yaml:"id" json:"id"`
	Title          string  `csv:"title" yaml:"title" json:"title"`
	Authors        Authors `csv:"authors" yaml:"authors,omitempty" json:"authors"`
	Year           string  `csv:"year" yaml:"year,omitempty" json:"year,omitempty"`
	Publisher      string  `csv:"publisher" yaml:"publisher,omitempty" json:"publisher,omitempty"`
	Language       string  `csv:"language" yaml:"language,omitempty" json:"language,omitempty"`
	Extension      string  `csv:"extension" yaml:"extension,omitempty" json:"extension,omitempty"`
	Size           string  `csv:"size" yaml:"size,omitempty" json:"size,omitempty"`
	Rating         string  `csv:"rating" yaml:"rating,omitempty" json:"rating,omitempty"`
	SourceURL      string  `csv:"source_url,url" yaml:"source_url,omitempty" json:"source_url,omitempty"`
	CoverURL       string  `csv:"cover_url,cover" yaml:"cover_url,omitempty" json:"cover_url,omitempty"`
	ISBN           string  `csv:"isbn" yaml:"isbn,omitempty" json:"isbn,omitempty"`
	SearchQuery    string  `csv:"search_query" yaml:"search_query,omitempty" json:"search_query,omitempty"`
	Status         Status  `csv:"download_status" yaml:"download_status" json:"download_status"`
	DownloadURL    string  `csv:"download_url" yaml:"download_url,omitempty" json:"download_url,omitempty"`
	LocalPath      string  `csv:"local_path" yaml:"local_path,omitempty" json:"local_path,omitempty"`
	CoverLocalPath string  `csv:"cover_local_path" yaml:"cover_local_path,omitempty" json:"cover_local_path,omitempty"`
	DriveLink      string  `csv:"drive_link" yaml:"drive_link,omitempty" json:"drive_link,omitempty"`
	CoverDriveLink string  `csv:"cover_drive_link" yaml:"cover_drive_link,omitempty" json:"cover_drive_link,omitempty"`
	AddedAt        string  `csv:"added_at,added_date" yaml:"added_at,omitempty" json:"added_at,omitempty"`
	UpdatedAt      string  `csv:"updated_at,updated_date" yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Uploaded reports whether the record has a shareable cloud link.
func (r BookRecord) Uploaded() bool {
	return r.DriveLink != ""
}

// AuthorLine joins the authors for display.
func (r BookRecord) AuthorLine() string {
	return strings.Join(r.Authors, ", ")
}

// FilenameTitle, FilenameAuthors and FilenameExtension let a record be
// passed straight to the naming package.
func (r BookRecord) FilenameTitle() string { return r.Title }
func (r BookRecord) FilenameAuthors() []string { return r.Authors }
func (r BookRecord) FilenameExtension() string { return r.Extension }

// Authors is an ordered author list stored as one ", "-joined CSV cell.
type Authors []string

// MarshalCSV implements gocsv.TypeMarshaller.
func (a Authors) MarshalCSV() (string, error) {
	return strings.Join(a, ", "), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (a *Authors) UnmarshalCSV(s string) error {
	*a = SplitAuthors(s)
	return nil
}

// SplitAuthors parses a joined author cell. Both ", " and ";" separators
// are accepted.
func SplitAuthors(s string) Authors {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	sep := ", "
	if strings.Contains(s, ";") {
		sep = ";"
	}
	var out Authors
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
