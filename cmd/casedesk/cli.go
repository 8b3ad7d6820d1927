package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/casedesk/cli/config"
	"github.com/casedesk/cli/internal/api"
	"github.com/casedesk/cli/internal/chat"
	"github.com/casedesk/cli/internal/documents"
	"github.com/casedesk/cli/internal/intake"
	"github.com/casedesk/cli/internal/listview"
	"github.com/casedesk/cli/internal/logger"
)

// cli runs the one-shot modes against the same controllers the TUI uses
type cli struct {
	cfg    *config.Config
	log    *zap.Logger
	client *api.Client
	out    io.Writer
}

func newCLI(cfg *config.Config, log *zap.Logger, out io.Writer) *cli {
	return &cli{
		cfg:    cfg,
		log:    log,
		client: api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger.Module(log, "api")),
		out:    out,
	}
}

func (c *cli) ask(ctx context.Context, question string) error {
	session := chat.NewSession(c.client, logger.Module(c.log, "chat"))
	answer, err := session.Submit(ctx, question)
	if err != nil {
		return fmt.Errorf("failed to query agent: %w", err)
	}
	fmt.Fprintln(c.out, chat.NewRenderer("notty").Render(answer, 80))
	return nil
}

func (c *cli) upload(ctx context.Context, paths []string) error {
	m := documents.NewManager(c.client, logger.Module(c.log, "documents"), nil)
	for _, p := range paths {
		info, err := m.AddFile(p)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Selected %s\n", info.Name)
	}
	msg, err := m.Upload(ctx)
	if err != nil {
		return fmt.Errorf("failed to upload documents: %w", err)
	}
	fmt.Fprintln(c.out, msg)
	return c.printDocuments(m.Snapshot())
}

func (c *cli) transcribe(ctx context.Context, path string) error {
	p := intake.NewPipeline(c.client, logger.Module(c.log, "intake"), nil)
	fmt.Fprintln(c.out, "Uploading and transcribing audio...")
	r, err := p.Run(ctx, path)
	if err != nil {
		return err
	}
	if r.Transcript != "" {
		fmt.Fprintf(c.out, "\nTranscript:\n%s\n\n", r.Transcript)
	}
	if !r.OK() {
		return r.Err
	}
	fmt.Fprintln(c.out, r.StatusText())
	fmt.Fprintln(c.out, r.IntakeJSON())
	return nil
}

func (c *cli) list(ctx context.Context, what string) error {
	switch strings.ToLower(what) {
	case "cases":
		loader := listview.NewLoader("cases", listview.FetchCases(c.client), listview.NewCaseList(c.cfg.User.Name), c.log)
		if err := loader.Load(ctx); err != nil {
			return fmt.Errorf("failed to load cases: %w", err)
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CASE ID\tNAME\tCLIENT\tTYPE\tSTATUS\tASSIGNED TO\tLAST UPDATED")
		for _, cs := range loader.List().Visible() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", cs.CaseID, cs.CaseName, cs.ClientName, cs.Type,
				cs.Status, listview.NewCaseDetail(cs).AssignedTo, cs.LastUpdatedDisplay)
		}
		return tw.Flush()
	case "clients":
		loader := listview.NewLoader("clients", listview.FetchClients(c.client), listview.NewClientList(), c.log)
		if err := loader.Load(ctx); err != nil {
			return fmt.Errorf("failed to load clients: %w", err)
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tEMAIL\tCASES\tLAST ACTIVITY\tSTATUS")
		for _, cl := range loader.List().Visible() {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", cl.Name, cl.ContactEmail, cl.NumCases, cl.LastActivityDisplay, cl.Status)
		}
		return tw.Flush()
	case "documents":
		m := documents.NewManager(c.client, logger.Module(c.log, "documents"), nil)
		if err := m.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to load documents: %w", err)
		}
		return c.printDocuments(m.Snapshot())
	default:
		return fmt.Errorf("unknown list %q: want cases, clients or documents", what)
	}
}

func (c *cli) printDocuments(v documents.View) error {
	if v.ListError != "" {
		fmt.Fprintln(c.out, v.ListError)
		return nil
	}
	if v.Empty {
		fmt.Fprintln(c.out, v.EmptyText)
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILENAME\tCHUNKS\tINDEXED AT\tAGE")
	for _, r := range v.Rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.Filename, r.Chunks, r.IndexedAt, r.Age)
	}
	return tw.Flush()
}
