package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/dmitrijs2005/elibrary/internal/client/models"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func renderItems(w io.Writer, items []models.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Nothing found.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tDEPT\tYEAR\tUPLOADED BY")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Name, it.Category, it.Department, it.Year, it.UploaderName)
	}
	tw.Flush()
}

func renderItem(w io.Writer, it *models.Item) {
	tw := table(w)
	fmt.Fprintf(tw, "ID:\t%s\n", it.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", it.Name)
	fmt.Fprintf(tw, "Category:\t%s\n", it.Category)
	fmt.Fprintf(tw, "Department:\t%s\n", it.Department)
	fmt.Fprintf(tw, "Year:\t%s\n", it.Year)
	fmt.Fprintf(tw, "Uploaded by:\t%s\n", it.UploaderName)
	if it.FileName != "" {
		fmt.Fprintf(tw, "File:\t%s (%s)\n", it.FileName, it.MimeType)
	}
	tw.Flush()
}

func renderMessages(w io.Writer, msgs []models.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No messages yet.")
		return
	}
	for _, m := range msgs {
		mark := " "
		if m.Highlight {
			mark = "*"
		}
		when := ""
		if !m.CreatedAt.IsZero() {
			when = m.CreatedAt.Local().Format("02 Jan 15:04")
		}
		fmt.Fprintf(w, "%s [%s] %s (%s): %s\n", mark, when, m.Name, m.ID, m.Text)
	}
}

func renderStudents(w io.Writer, users []models.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No students.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLL NO\tDEPT\tYEAR\tSTATUS")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.RollNo, u.Department, u.Year, u.Status)
	}
	tw.Flush()
}

func renderProfile(w io.Writer, u *models.User) {
	tw := table(w)
	fmt.Fprintf(tw, "Name:\t%s\n", u.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "Roll no:\t%s\n", u.RollNo)
	fmt.Fprintf(tw, "Department:\t%s\n", u.Department)
	fmt.Fprintf(tw, "Year:\t%s\n", u.Year)
	fmt.Fprintf(tw, "Mobile:\t%s\n", u.Mobile)
	fmt.Fprintf(tw, "Status:\t%s\n", u.Status)
	tw.Flush()
}

func renderStats(w io.Writer, stats models.DashboardStats) {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := table(w)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s:\t%d\n", k, stats[k])
	}
	tw.Flush()
}
