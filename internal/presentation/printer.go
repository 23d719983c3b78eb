package presentation

import (
	"fmt"
	"io"
	"sort"
	"time"

	"dcimsync/internal/domain"

	"gopkg.in/yaml.v3"
)

// Printer renders history, staging and cycle summaries for the CLI.
type Printer struct {
	Writer io.Writer
	// Verbose lists every file instead of the first and last few.
	Verbose bool
}

func (p Printer) PrintHistory(source string, names []string) {
	st := newStyles(p.Writer)
	fmt.Fprintln(p.Writer, st.section.Render("History of "+source))

	for _, line := range p.truncate(names) {
		fmt.Fprintln(p.Writer, st.file.Render(line))
	}
	fmt.Fprintln(p.Writer)
	fmt.Fprintf(p.Writer, "%d files already downloaded from %s.\n", len(names), source)
}

// HistoryDocument is the YAML shape of "history --yaml".
type HistoryDocument struct {
	Sources []SourceHistory `yaml:"sources"`
}

type SourceHistory struct {
	Name  string   `yaml:"name"`
	Count int      `yaml:"count"`
	Files []string `yaml:"files"`
}

func (p Printer) PrintHistoryYAML(histories map[string][]string) error {
	doc := HistoryDocument{}
	sources := make([]string, 0, len(histories))
	for source := range histories {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		names := histories[source]
		doc.Sources = append(doc.Sources, SourceHistory{Name: source, Count: len(names), Files: names})
	}

	enc := yaml.NewEncoder(p.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func (p Printer) PrintStaging(root string, groups []domain.StagedGroup) {
	st := newStyles(p.Writer)
	fmt.Fprintln(p.Writer, st.section.Render("Staging")+" "+st.path.Render(root))

	total := 0
	for _, group := range groups {
		total += len(group.Files)
		fmt.Fprintf(p.Writer, "%s %s %s\n", iconFolder, st.title.Render(group.Source), st.date.Render(formatGroupDate(group.Date)))
		for _, line := range p.truncate(group.Files) {
			fmt.Fprintln(p.Writer, "  "+st.file.Render(line))
		}
	}

	fmt.Fprintln(p.Writer)
	if total == 0 {
		fmt.Fprintln(p.Writer, "Nothing waiting for upload.")
		return
	}
	fmt.Fprintf(p.Writer, "%d files in %d groups waiting for upload.\n", total, len(groups))
}

func (p Printer) PrintReport(report domain.CycleReport) {
	st := newStyles(p.Writer)
	fmt.Fprintln(p.Writer, st.section.Render("Cycle "+report.ID))

	stat := func(label string, value any) {
		fmt.Fprintf(p.Writer, "%s%s\n", st.label.Render(label), st.value.Render(fmt.Sprint(value)))
	}
	stat("Source", report.Source.Name+" ("+report.Source.Mode.String()+")")
	stat("Listed", report.Listed)
	stat("New", report.New)
	stat("Fetched", report.Fetched)
	if report.Failed > 0 {
		fmt.Fprintf(p.Writer, "%s%s\n", st.label.Render("Failed"), st.warning.Render(fmt.Sprint(report.Failed)))
	}
	stat("Committed", report.Committed)
	if !report.Started.IsZero() && !report.Finished.IsZero() {
		stat("Took", report.Finished.Sub(report.Started).Round(time.Millisecond))
	}

	fmt.Fprintln(p.Writer)
	if report.Err != nil {
		fmt.Fprintf(p.Writer, "%s %s %s\n", st.err.Render(iconError), report.State, iconArrow+" "+report.Err.Error())
		return
	}
	if !report.Uploaded {
		fmt.Fprintln(p.Writer, st.success.Render(iconSuccess)+" Nothing new to upload.")
		return
	}
	fmt.Fprintln(p.Writer, st.success.Render(iconSuccess)+" Uploaded and committed.")
}

// truncate keeps the first two and last two names unless verbose.
func (p Printer) truncate(names []string) []string {
	if p.Verbose || len(names) <= 4 {
		return names
	}
	head := names[:2:2]
	tail := names[len(names)-2:]
	return append(append(head, fmt.Sprintf("... %d more", len(names)-4)), tail...)
}

func formatGroupDate(date string) string {
	parsed, err := time.Parse("20060102", date)
	if err != nil {
		return date
	}
	return parsed.Format("2006-01-02")
}
