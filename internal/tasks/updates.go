package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ReadCatalog Phase = iota
	ImportSongs
	ExportSongs
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case ReadCatalog:
		return "read_catalog"
	case ImportSongs:
		return "import_songs"
	case ExportSongs:
		return "export_songs"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func readCatalogUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadCatalog,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Read %d songs from the catalog", total),
	}
}

func importedSongUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, name),
	}
}

func skippedSongUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] - %s (already exists)", step, total, name),
	}
}

func failedSongUpdate(phase Phase, step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func exportCompletedUpdate(step, total int, name, file string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, name),
		Data:    file,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote manifest %s", path),
		Data:    path,
	}
}
