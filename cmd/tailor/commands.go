package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"resume-tailor/internal/applog"
	"resume-tailor/internal/bootstrap"
	"resume-tailor/internal/jobdesc"
	"resume-tailor/internal/pipeline"
	"resume-tailor/internal/shared/config"
	"resume-tailor/resume/model"
	"resume-tailor/resume/render"
)

// cli carries flag values and the lazily built app across commands.
type cli struct {
	loadConfig func() config.Config
	stdin      io.Reader

	dryRun  bool
	jdPath  string
	company string
	role    string
	pdf     bool
	asJSON  bool

	app *bootstrap.App
}

func newCLI(loadConfig func() config.Config, stdin io.Reader) *cli {
	return &cli{loadConfig: loadConfig, stdin: stdin}
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "tailor",
		Short:         "Extract, tailor and render resumes with an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.loadConfig()
			if c.dryRun {
				cfg.LLMProvider = "stub"
			}
			app, err := bootstrap.Build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			c.app = app
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&c.dryRun, "dry-run", false, "Use the stub oracle (replays STUB_RESPONSE_FILES)")

	root.AddCommand(
		c.extractCommand(),
		c.tailorCommand(),
		c.renderCommand(),
		c.appliedCommand(),
		c.historyCommand(),
		c.scoreCommand(),
		c.askCommand(),
		c.runCommand(),
	)
	return root
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}

func (c *cli) extractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <resume.pdf|resume.docx>",
		Short: "Extract a resume into the active JSON record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.oracleContext(cmd, 1)
			defer cancel()
			svc, err := c.app.Pipeline(ctx)
			if err != nil {
				return err
			}
			res, err := svc.Extract(ctx, args[0])
			if err != nil {
				return err
			}
			reportExtract(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func (c *cli) tailorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tailor",
		Short: "Rewrite the active resume for a job description",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jd, err := jobdesc.Load(c.jdPath, c.stdin)
			if err != nil {
				return err
			}
			ctx, cancel := c.oracleContext(cmd, 1)
			defer cancel()
			svc, err := c.app.Pipeline(ctx)
			if err != nil {
				return err
			}
			active, err := svc.Active(ctx)
			if err != nil {
				return err
			}
			res, err := svc.Tailor(ctx, active, jd)
			if err != nil {
				return err
			}
			reportTailor(cmd.OutOrStdout(), res)
			return nil
		},
	}
	c.jdFlag(cmd)
	return cmd
}

func (c *cli) renderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the tailored resume to DOCX and log the application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tailored, err := c.app.Artifacts().Tailored(cmd.Context())
			if err != nil {
				return err
			}
			return c.renderAndRecord(cmd, tailored)
		},
	}
	c.applicationFlags(cmd)
	cmd.Flags().BoolVar(&c.pdf, "pdf", false, "Also convert the DOCX to PDF with soffice")
	return cmd
}

func (c *cli) appliedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "applied",
		Short: "Record an application in the log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.record(cmd)
		},
	}
	c.applicationFlags(cmd)
	return cmd
}

func (c *cli) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List logged applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.app.Recorder(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := rec.Entries(cmd.Context())
			if err != nil {
				return err
			}
			if c.asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			return writeHistory(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().BoolVar(&c.asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func (c *cli) scoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score how well the active resume fits a job description",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jd, err := jobdesc.Load(c.jdPath, c.stdin)
			if err != nil {
				return err
			}
			ctx, cancel := c.oracleContext(cmd, 1)
			defer cancel()
			svc, err := c.app.Pipeline(ctx)
			if err != nil {
				return err
			}
			active, err := svc.Active(ctx)
			if err != nil {
				return err
			}
			score, err := svc.MatchScore(ctx, active, jd)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), score)
		},
	}
	c.jdFlag(cmd)
	return cmd
}

func (c *cli) askCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer an application question from the resume",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.oracleContext(cmd, 1)
			defer cancel()
			svc, err := c.app.Pipeline(ctx)
			if err != nil {
				return err
			}
			// Prefer the record tailored for the current posting.
			resume, err := svc.Tailored(ctx)
			if errors.Is(err, pipeline.ErrNoTailoredResume) {
				resume, err = svc.Active(ctx)
			}
			if err != nil {
				return err
			}
			answer, err := svc.Answer(ctx, resume, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}

func (c *cli) runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <resume.pdf|resume.docx>",
		Short: "Extract, tailor, render and log in one go",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jd, err := jobdesc.Load(c.jdPath, c.stdin)
			if err != nil {
				return err
			}
			ctx, cancel := c.oracleContext(cmd, 2)
			defer cancel()
			svc, err := c.app.Pipeline(ctx)
			if err != nil {
				return err
			}

			extracted, err := svc.Extract(ctx, args[0])
			if err != nil {
				return err
			}
			reportExtract(cmd.OutOrStdout(), extracted)
			if !extracted.Valid || extracted.SchemaErr != nil {
				return fmt.Errorf("extraction did not produce a usable resume; fix %s and run tailor", extracted.Key)
			}

			tailored, err := svc.Tailor(ctx, extracted.Resume, jd)
			if err != nil {
				return err
			}
			reportTailor(cmd.OutOrStdout(), tailored)
			return c.renderAndRecord(cmd, tailored.Resume)
		},
	}
	c.jdFlag(cmd)
	c.applicationFlags(cmd)
	cmd.Flags().BoolVar(&c.pdf, "pdf", false, "Also convert the DOCX to PDF with soffice")
	return cmd
}

func (c *cli) jdFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.jdPath, "jd", "", "Job description file (.txt, .md, .html) or - for stdin")
	_ = cmd.MarkFlagRequired("jd")
}

func (c *cli) applicationFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.company, "company", "", "Company name")
	cmd.Flags().StringVar(&c.role, "role", "", "Role title")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("role")
}

// oracleContext allows one OracleTimeout per oracle call the command makes.
func (c *cli) oracleContext(cmd *cobra.Command, calls int) (context.Context, context.CancelFunc) {
	timeout := c.app.Config.OracleTimeout
	if timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), time.Duration(calls)*timeout)
}

func (c *cli) renderAndRecord(cmd *cobra.Command, resume model.Resume) error {
	out := cmd.OutOrStdout()
	path, err := c.app.Config.DocumentPath(c.company, c.role, "docx")
	if err != nil {
		return err
	}
	if err := render.Render(resume, path); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", path)

	if c.pdf {
		pdfPath, err := c.app.Converter.Convert(cmd.Context(), path, "")
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", pdfPath)
	}
	return c.record(cmd)
}

func (c *cli) record(cmd *cobra.Command) error {
	rec, err := c.app.Recorder(cmd.Context())
	if err != nil {
		return err
	}
	if err := rec.Record(cmd.Context(), c.company, c.role); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "logged %s / %s as %s\n", c.company, c.role, applog.StatusApplied)
	return nil
}

func reportExtract(out io.Writer, res pipeline.ExtractResult) {
	switch {
	case !res.Valid:
		fmt.Fprintf(out, "warning: oracle output is not valid JSON; raw text saved to %s\n", res.Key)
	case res.SchemaErr != nil:
		fmt.Fprintf(out, "warning: saved %s but it does not match the resume schema: %v\n", res.Key, res.SchemaErr)
	default:
		fmt.Fprintf(out, "saved %s\n", res.Key)
	}
}

func reportTailor(out io.Writer, res pipeline.TailorResult) {
	fmt.Fprintf(out, "saved %s\n", res.Key)
	for _, v := range res.Repaired {
		fmt.Fprintf(out, "repaired: %s\n", v)
	}
	for _, v := range res.Violations {
		fmt.Fprintf(out, "violation: %s\n", v)
	}
}

func writeHistory(out io.Writer, entries []applog.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "no applications logged")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCOMPANY\tROLE\tSTATUS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Date.Format(applog.DateLayout), e.Company, e.Role, e.Status)
	}
	return tw.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
