package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hxstate/pkg/dom"
	"github.com/vango-dev/hxstate/pkg/render"
)

func renderCmd(a *app) *cobra.Command {
	var (
		out    string
		pretty bool
		strip  bool
		sets   []string
	)

	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Run the bindings and print the resulting HTML",
		Long: `Run binding setup over a document, apply any --set writes, and print the
document with every property the effects assigned written back as markup.

Examples:
  hxstate render index.html
  hxstate render --set count.count=5 index.html
  hxstate render --strip --pretty -o out.html s3://pages/index.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignments := make([]assignment, 0, len(sets))
			for _, s := range sets {
				as, err := parseAssignment(s)
				if err != nil {
					return err
				}
				assignments = append(assignments, as)
			}

			p, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := p.apply(assignments); err != nil {
				return err
			}

			cfg := render.RendererConfig{Pretty: pretty}
			if strip {
				cfg.StripAttrs = a.cfg.Attrs.All()
			}
			r := render.NewRenderer(cfg)

			if out == "" {
				return r.RenderToWriter(cmd.OutOrStdout(), p.doc)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			return renderAndClose(r, f, p.doc)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the output")
	cmd.Flags().BoolVar(&strip, "strip", false, "Remove binding attributes from the output")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Write state before rendering: target.state=value (repeatable)")

	return cmd
}

// renderAndClose writes doc to wc and closes it. A failed close is reported
// when the render itself succeeded.
func renderAndClose(r *render.Renderer, wc io.WriteCloser, doc *dom.Element) (err error) {
	defer func() {
		if cerr := wc.Close(); err == nil {
			err = cerr
		}
	}()
	return r.RenderToWriter(wc, doc)
}
