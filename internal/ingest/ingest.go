package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"worldsheet/internal/linking"
	"worldsheet/internal/parser"
	"worldsheet/internal/store"
)

// Run imports every markdown worksheet under roots into options.WorldID.
// A document whose id (or, without an id, whose title) already exists in the
// world updates that worksheet; otherwise a new one is created. Link refs
// stored on an existing worksheet survive unless the file sets the slot key.
func Run(ctx context.Context, registry *linking.Registry, db Store, roots []string, options Options, logger *zap.Logger) (*Result, error) {
	if strings.TrimSpace(options.WorldID) == "" {
		return nil, fmt.Errorf("world id is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	files, err := walkMarkdownFiles(roots, options.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking files: %w", err)
	}

	result := &Result{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		doc, err := parser.ParseFile(path)
		if err != nil {
			if errors.Is(err, parser.ErrNoFrontmatter) || errors.Is(err, parser.ErrMissingType) {
				result.FilesSkipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}

		if !registry.IsKnownTool(doc.ToolType) {
			logger.Debug("skipping worksheet of unknown tool", zap.String("file", path), zap.String("tool", doc.ToolType))
			result.FilesSkipped++
			continue
		}

		if err := importDocument(ctx, registry, db, doc, options.WorldID, result); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("importing %s: %w", path, err))
			continue
		}
	}

	logger.Info("import finished",
		zap.String("world", options.WorldID),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("skipped", result.FilesSkipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func importDocument(ctx context.Context, registry *linking.Registry, db Store, doc *parser.Document, worldID string, result *Result) error {
	existing, err := findExisting(ctx, db, doc, worldID)
	if err != nil {
		return err
	}

	if existing == nil {
		_, err := db.CreateWorksheet(ctx, store.WorksheetInput{
			ID:       doc.ID,
			WorldID:  worldID,
			ToolType: doc.ToolType,
			Title:    doc.Title,
			Data:     doc.Data,
		})
		if err != nil {
			return err
		}
		result.Created++
		return nil
	}

	if existing.WorldID != worldID {
		return fmt.Errorf("worksheet %s belongs to world %s", existing.ID, existing.WorldID)
	}
	if existing.ToolType != doc.ToolType {
		return fmt.Errorf("worksheet %s is a %s, not a %s", existing.ID, existing.ToolType, doc.ToolType)
	}

	data := mergeLinks(registry, doc.ToolType, doc.Data, existing.Data)
	dataChanged := !reflect.DeepEqual(data, existing.Data)
	titleChanged := doc.Title != "" && doc.Title != existing.Title
	if !dataChanged && !titleChanged {
		result.Unchanged++
		return nil
	}
	if dataChanged {
		if err := db.UpdateWorksheetData(ctx, existing.ID, data); err != nil {
			return err
		}
	}
	if titleChanged {
		if err := db.UpdateWorksheetTitle(ctx, existing.ID, doc.Title); err != nil {
			return err
		}
	}
	result.Updated++
	return nil
}

func findExisting(ctx context.Context, db Store, doc *parser.Document, worldID string) (*store.Worksheet, error) {
	if doc.ID != "" {
		return db.GetWorksheet(ctx, doc.ID)
	}

	worksheets, err := db.ListWorksheets(ctx, worldID, doc.ToolType)
	if err != nil {
		return nil, err
	}
	for i := range worksheets {
		if strings.EqualFold(worksheets[i].Title, doc.Title) {
			return &worksheets[i], nil
		}
	}
	return nil, nil
}

// mergeLinks carries link refs over from the stored payload for every slot
// key the imported data leaves unset.
func mergeLinks(registry *linking.Registry, toolType string, incoming, stored map[string]any) map[string]any {
	data := make(map[string]any, len(incoming))
	for key, value := range incoming {
		data[key] = value
	}
	for _, cfg := range registry.ConfigsFor(toolType) {
		if _, set := data[cfg.Key]; set {
			continue
		}
		if ref, ok := stored[cfg.Key]; ok {
			data[cfg.Key] = ref
		}
	}
	return data
}

func walkMarkdownFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			if d.IsDir() {
				return nil
			}
			if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
				return nil
			}
			if isExcluded(path, excluded) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}
