package ingest

type Result struct {
	Created      int
	Updated      int
	Unchanged    int
	FilesSkipped int
	Errors       []error
}

type Options struct {
	WorldID string
	Exclude []string
}
