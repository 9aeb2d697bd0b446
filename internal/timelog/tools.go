package timelog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/parley-dev/parley/internal/catalog"
)

// Tools returns the timekeeping tool set over the given store.
// log_time and delete_time_entry mutate state and are flagged destructive;
// list_time_entries and sum_time are read-only.
func Tools(store *Store) []catalog.Tool {
	return []catalog.Tool{
		logTimeTool(store),
		listEntriesTool(store),
		sumTimeTool(store),
		deleteEntryTool(store),
	}
}

type logTimeRequest struct {
	Project string  `mapstructure:"project"`
	Hours   float64 `mapstructure:"hours"`
	Note    string  `mapstructure:"note"`
	Date    string  `mapstructure:"date"`
}

func (r logTimeRequest) Validate() error {
	if r.Project == "" {
		return errors.New("project is required")
	}
	if r.Hours <= 0 || r.Hours > 24 {
		return fmt.Errorf("hours must be between 0 and 24, got %v", r.Hours)
	}
	return nil
}

func logTimeTool(store *Store) catalog.Tool {
	return catalog.NewTypedTool(catalog.Descriptor{
		Name:        "log_time",
		Description: "Logs worked hours against a project. Date defaults to today.",
		Parameters: &catalog.Schema{
			Type: catalog.TypeObject,
			Properties: map[string]*catalog.Schema{
				"project": {Type: catalog.TypeString, Description: "Project code, e.g. INTERNAL"},
				"hours":   {Type: catalog.TypeNumber, Description: "Hours worked, 0-24"},
				"note":    {Type: catalog.TypeString, Description: "Optional free-text note"},
				"date":    {Type: catalog.TypeString, Description: "Date in YYYY-MM-DD, defaults to today"},
			},
			Required: []string{"project", "hours"},
		},
		Destructive: true,
	}, func(ctx context.Context, req logTimeRequest) (string, error) {
		entry, err := store.Log(Entry{
			Project: req.Project,
			Hours:   req.Hours,
			Note:    req.Note,
			Date:    req.Date,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Logged %v hours on %s for %s (entry %s).",
			entry.Hours, entry.Date, entry.Project, entry.ID), nil
	})
}

type listEntriesRequest struct {
	Project string `mapstructure:"project"`
	Since   string `mapstructure:"since"`
}

func listEntriesTool(store *Store) catalog.Tool {
	return catalog.NewTypedTool(catalog.Descriptor{
		Name:        "list_time_entries",
		Description: "Lists logged time entries, optionally filtered by project and start date.",
		Parameters: &catalog.Schema{
			Type: catalog.TypeObject,
			Properties: map[string]*catalog.Schema{
				"project": {Type: catalog.TypeString, Description: "Filter by project code"},
				"since":   {Type: catalog.TypeString, Description: "Only entries on or after this YYYY-MM-DD date"},
			},
		},
	}, func(ctx context.Context, req listEntriesRequest) (string, error) {
		entries, err := store.List(Filter{Project: req.Project, Since: req.Since})
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return "No time entries found.", nil
		}
		out, err := json.Marshal(entries)
		if err != nil {
			return "", fmt.Errorf("failed to encode entries: %w", err)
		}
		return string(out), nil
	})
}

func sumTimeTool(store *Store) catalog.Tool {
	return catalog.NewTypedTool(catalog.Descriptor{
		Name:        "sum_time",
		Description: "Totals logged hours, optionally filtered by project and start date.",
		Parameters: &catalog.Schema{
			Type: catalog.TypeObject,
			Properties: map[string]*catalog.Schema{
				"project": {Type: catalog.TypeString, Description: "Filter by project code"},
				"since":   {Type: catalog.TypeString, Description: "Only entries on or after this YYYY-MM-DD date"},
			},
		},
	}, func(ctx context.Context, req listEntriesRequest) (string, error) {
		total, err := store.Sum(Filter{Project: req.Project, Since: req.Since})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Total: %v hours.", total), nil
	})
}

type deleteEntryRequest struct {
	ID string `mapstructure:"id"`
}

func (r deleteEntryRequest) Validate() error {
	if r.ID == "" {
		return errors.New("id is required")
	}
	return nil
}

func deleteEntryTool(store *Store) catalog.Tool {
	return catalog.NewTypedTool(catalog.Descriptor{
		Name:        "delete_time_entry",
		Description: "Deletes a previously logged time entry by id.",
		Parameters: &catalog.Schema{
			Type: catalog.TypeObject,
			Properties: map[string]*catalog.Schema{
				"id": {Type: catalog.TypeString, Description: "The entry id to delete"},
			},
			Required: []string{"id"},
		},
		Destructive: true,
	}, func(ctx context.Context, req deleteEntryRequest) (string, error) {
		if err := store.Delete(req.ID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Deleted entry %s.", req.ID), nil
	})
}
