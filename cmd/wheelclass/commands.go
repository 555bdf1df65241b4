// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/wheelclass/wheelclass-mcp/internal/debounce"
	"github.com/wheelclass/wheelclass-mcp/internal/debug"
	"github.com/wheelclass/wheelclass-mcp/internal/search"
	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
	"github.com/wheelclass/wheelclass-mcp/internal/source"
	"github.com/wheelclass/wheelclass-mcp/internal/tool"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the similarity tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !opts.debug {
				debug.SetMCPMode(true)
			}
			a, err := opts.load()
			if err != nil {
				return err
			}
			if watch {
				w, err := a.catalog.Watch(nil)
				if err != nil {
					return err
				}
				defer w.Close()
			}
			server := tool.NewServer(a.svc, version)
			debug.LogMCP("serving %s on stdio", a.catalog.Root())
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", true, "rescan when project files change")
	return cmd
}

// queryFlags are shared by similar and watch.
type queryFlags struct {
	fields    string
	columns   string
	min       float64
	limit     int
	inherited bool
	text      bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.fields, "fields", "", "take source fields from a manifest or source file (file or file#Class)")
	flags.StringVar(&f.columns, "columns", "", "columns to compare, e.g. name,type,comment (default from config)")
	flags.Float64Var(&f.min, "min", 0, "minimum similarity, inclusive (default from config)")
	flags.IntVar(&f.limit, "limit", 0, "maximum number of matches (default from config, 0 for all)")
	flags.BoolVar(&f.inherited, "inherited", false, "include inherited fields (default from config)")
	flags.BoolVar(&f.text, "text", false, "include declaration source in yaml/json output")
}

func (f *queryFlags) query(cmd *cobra.Command, a *app, args []string) (search.Query, error) {
	var class string
	if len(args) > 0 {
		class = args[0]
	}
	if class == "" && f.fields == "" {
		return search.Query{}, fmt.Errorf("a class argument or --fields is required")
	}

	q := a.svc.NewQuery(class)
	q.Limit = a.cfg.Limit
	q.IncludeText = f.text
	flags := cmd.Flags()
	if flags.Changed("inherited") {
		q.IncludeInherited = f.inherited
	}
	if flags.Changed("min") {
		if f.min < 0 || f.min > 1 {
			return search.Query{}, fmt.Errorf("--min must be within [0, 1]")
		}
		q.MinSimilarity = f.min
	}
	if flags.Changed("limit") {
		q.Limit = f.limit
	}
	if flags.Changed("columns") {
		cols, err := similarity.ParseColumns(f.columns)
		if err != nil {
			return search.Query{}, err
		}
		q.Columns = cols
	}
	if f.fields != "" {
		fields, language, err := resolveRef(cmd.Context(), a, f.fields, q.IncludeInherited)
		if err != nil {
			return search.Query{}, err
		}
		q.Fields = fields
		q.Language = language
	}
	return q, nil
}

func newSimilarCmd(opts *rootOptions) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "similar [class]",
		Short: "Rank data classes by field similarity to a class",
		Example: "  wheelclass similar com.acme.UserDTO\n" +
			"  wheelclass similar UserDTO --columns name,type,comment --min 0.3\n" +
			"  wheelclass similar --fields form.yaml -o json",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			q, err := qf.query(cmd, a, args)
			if err != nil {
				return err
			}
			r, err := a.svc.FindSimilar(cmd.Context(), q)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, r, resultTable(r))
		},
	}
	qf.register(cmd)
	return cmd
}

func newClassesCmd(opts *rootOptions) *cobra.Command {
	var f search.Filter
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "List data classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			classes, err := a.svc.ListDataClasses(cmd.Context(), f)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, classes, classesTable(classes))
		},
	}
	cmd.Flags().StringVar(&f.Language, "language", "", "only classes of this language (java, go)")
	cmd.Flags().StringVar(&f.Name, "name", "", "glob matched against qualified and simple names")
	cmd.Flags().BoolVar(&f.All, "all", false, "list every class, not only marked data classes")
	return cmd
}

func newDescribeCmd(opts *rootOptions) *cobra.Command {
	var inherited bool
	cmd := &cobra.Command{
		Use:   "describe <class>",
		Short: "Show a class and its fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("inherited") {
				inherited = a.cfg.IncludeInherited
			}
			d, err := a.svc.Describe(cmd.Context(), args[0], inherited)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, d, describeTable(d))
		},
	}
	cmd.Flags().BoolVar(&inherited, "inherited", false, "include inherited fields (default from config)")
	return cmd
}

func newCompareCmd(opts *rootOptions) *cobra.Command {
	var (
		columns   string
		inherited bool
	)
	cmd := &cobra.Command{
		Use:   "compare <a> <b>",
		Short: "Score two field sets against each other",
		Long: "Each side is a project class name, a source file reference such as User.java#UserDTO or " +
			"order.go#Order, or a YAML/JSON field manifest.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("inherited") {
				inherited = a.cfg.IncludeInherited
			}
			cols := a.svc.Settings().Columns
			if cmd.Flags().Changed("columns") {
				if cols, err = similarity.ParseColumns(columns); err != nil {
					return err
				}
			}
			left, _, err := resolveRef(cmd.Context(), a, args[0], inherited)
			if err != nil {
				return err
			}
			right, _, err := resolveRef(cmd.Context(), a, args[1], inherited)
			if err != nil {
				return err
			}
			cmp := a.svc.Compare(left, right, cols)
			return render(cmd.OutOrStdout(), opts.output, cmp, comparisonTable(cmp))
		},
	}
	cmd.Flags().StringVar(&columns, "columns", "", "columns to compare (default from config)")
	cmd.Flags().BoolVar(&inherited, "inherited", false, "include inherited fields of project classes (default from config)")
	return cmd
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "watch [class]",
		Short: "Re-rank similar classes whenever project files change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			q, err := qf.query(cmd, a, args)
			if err != nil {
				return err
			}
			return watchLoop(cmd, opts, a, q)
		},
	}
	qf.register(cmd)
	return cmd
}

func watchLoop(cmd *cobra.Command, opts *rootOptions, a *app, q search.Query) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	find := func(ctx context.Context) (*search.Result, error) {
		return a.svc.FindSimilar(ctx, q)
	}

	r, err := find(ctx)
	if err != nil {
		return err
	}
	if err := render(out, opts.output, r, resultTable(r)); err != nil {
		return err
	}
	last := r.Version

	d := debounce.New[*search.Result](a.cfg.DebounceDelay())
	defer d.Close()
	w, err := a.catalog.Watch(func(string) {
		d.Submit(ctx, find)
	})
	if err != nil {
		return err
	}
	defer w.Close()
	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s\n", a.catalog.Root())

	for {
		select {
		case <-ctx.Done():
			return nil
		case res, ok := <-d.Results():
			if !ok {
				return nil
			}
			if res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", res.Err)
				continue
			}
			if res.Value.Version == last {
				continue
			}
			last = res.Value.Version
			if err := render(out, opts.output, res.Value, resultTable(res.Value)); err != nil {
				return err
			}
		}
	}
}

// resolveRef returns the fields named by ref and their language. ref is a
// source or manifest file, optionally suffixed with "#Class", or else a
// class in the project catalog. With inherited set, the supers of a class
// read from a file are looked up in the project catalog.
func resolveRef(ctx context.Context, a *app, ref string, inherited bool) (similarity.FieldSet, string, error) {
	path, name := ref, ""
	if i := strings.LastIndex(ref, "#"); i >= 0 {
		path, name = ref[:i], ref[i+1:]
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		fields, err := a.svc.ClassFields(ctx, ref, inherited)
		if err != nil {
			return nil, "", err
		}
		return fields, "", nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	result, err := a.catalog.Pipeline().ExtractWithMeta(ctx, source.Source{Path: path, Content: content})
	if err != nil {
		return nil, "", err
	}
	c, err := pickClass(result.Classes, name, path)
	if err != nil {
		return nil, "", err
	}
	if !inherited || len(c.Supers) == 0 {
		return c.Fields, c.Language, nil
	}
	// Supers of a file outside the catalog still resolve against project classes.
	snap, err := a.catalog.Snapshot(ctx)
	if err != nil {
		return nil, "", err
	}
	return snap.Fields(c, true), c.Language, nil
}

func pickClass(classes []*source.Class, name, path string) (*source.Class, error) {
	if name == "" {
		if len(classes) == 1 {
			return classes[0], nil
		}
		return nil, fmt.Errorf("%s declares %d classes; use %s#<Class>", path, len(classes), path)
	}
	for _, c := range classes {
		if c.Name == name || c.QualifiedName == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", search.ErrClassNotFound, name, path)
}
