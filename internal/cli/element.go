package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/errors"
)

// elementCommand creates the element command with its subcommands.
func (c *CLI) elementCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "element",
		Aliases: []string{"el"},
		Short:   "List, add, update and remove elements of a document",
	}

	cmd.AddCommand(c.elementListCommand())
	cmd.AddCommand(c.elementAddCommand())
	cmd.AddCommand(c.elementUpdateCommand())
	cmd.AddCommand(c.elementRemoveCommand())

	return cmd
}

// =============================================================================
// Flags
// =============================================================================

// elementFlags binds the editable element fields to command-line flags.
type elementFlags struct {
	content     string
	fromHTML    bool
	x, y        float64
	width       float64
	height      float64
	styles      []string
	locked      bool
	hidden      bool
	src         string
	alt         string
	url         string
	videoURL    string
	placeholder string
	inputType   string
}

func (f *elementFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.content, "content", "", "text content")
	fs.BoolVar(&f.fromHTML, "html", false, "treat --content as HTML and keep only its text")
	fs.Float64Var(&f.x, "x", 0, "left offset in px")
	fs.Float64Var(&f.y, "y", 0, "top offset in px")
	fs.Float64Var(&f.width, "width", 0, "width in px (default 200 on add)")
	fs.Float64Var(&f.height, "height", 0, "height in px (default 40 on add)")
	fs.StringArrayVarP(&f.styles, "style", "s", nil, "style declaration key=value (repeatable)")
	fs.BoolVar(&f.locked, "locked", false, "lock position and content")
	fs.BoolVar(&f.hidden, "hidden", false, "hide from preview and exports")
	fs.StringVar(&f.src, "src", "", "image source URL")
	fs.StringVar(&f.alt, "alt", "", "image alt text")
	fs.StringVar(&f.url, "url", "", "link target URL")
	fs.StringVar(&f.videoURL, "video-url", "", "YouTube URL")
	fs.StringVar(&f.placeholder, "placeholder", "", "input placeholder")
	fs.StringVar(&f.inputType, "input-type", "", "input type attribute")
}

// parseStyles turns key=value pairs into validated styles, in flag order.
func parseStyles(pairs []string) (element.Styles, error) {
	var s element.Styles
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok {
			return element.Styles{}, errors.New(errors.ErrCodeInvalidStyle, "style %q must be key=value", p)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if err := element.ValidateStyle(key, value); err != nil {
			return element.Styles{}, err
		}
		s.Set(key, value)
	}
	return s, nil
}

// text returns --content, reduced to its text when --html is set.
func (f *elementFlags) text() string {
	if f.fromHTML {
		return element.TextFromHTML(f.content)
	}
	return f.content
}

// hintStyles warns about style keys the visual inspector cannot edit.
// They are still saved and exported.
func (c *CLI) hintStyles(s element.Styles) {
	for _, k := range s.Keys() {
		if !strings.HasPrefix(k, "--") && !element.IsKnownProperty(k) {
			c.Logger.Warn("style property is not editable in the inspector", "property", k)
		}
	}
}

// element builds a new element from every flag value.
func (f *elementFlags) element(t element.Type) (element.Element, error) {
	styles, err := parseStyles(f.styles)
	if err != nil {
		return element.Element{}, err
	}
	return element.Element{
		Type:        t,
		Content:     f.text(),
		X:           f.x,
		Y:           f.y,
		Width:       f.width,
		Height:      f.height,
		Styles:      styles,
		Locked:      f.locked,
		Hidden:      f.hidden,
		Src:         f.src,
		Alt:         f.alt,
		URL:         f.url,
		VideoURL:    f.videoURL,
		Placeholder: f.placeholder,
		InputType:   f.inputType,
	}, nil
}

// patch builds a patch from the flags the user actually set.
func (f *elementFlags) patch(fs *pflag.FlagSet) (element.Patch, error) {
	styles, err := parseStyles(f.styles)
	if err != nil {
		return element.Patch{}, err
	}
	p := element.Patch{Styles: styles}
	setString := func(name string, dst **string, v string) {
		if fs.Changed(name) {
			*dst = element.Ptr(v)
		}
	}
	setFloat := func(name string, dst **float64, v float64) {
		if fs.Changed(name) {
			*dst = element.Ptr(v)
		}
	}
	setBool := func(name string, dst **bool, v bool) {
		if fs.Changed(name) {
			*dst = element.Ptr(v)
		}
	}
	setString("content", &p.Content, f.text())
	setFloat("x", &p.X, f.x)
	setFloat("y", &p.Y, f.y)
	setFloat("width", &p.Width, f.width)
	setFloat("height", &p.Height, f.height)
	setBool("locked", &p.Locked, f.locked)
	setBool("hidden", &p.Hidden, f.hidden)
	setString("src", &p.Src, f.src)
	setString("alt", &p.Alt, f.alt)
	setString("url", &p.URL, f.url)
	setString("video-url", &p.VideoURL, f.videoURL)
	setString("placeholder", &p.Placeholder, f.placeholder)
	setString("input-type", &p.InputType, f.inputType)
	return p, nil
}

// =============================================================================
// Subcommands
// =============================================================================

func (c *CLI) elementListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list [file]",
		Aliases: []string{"ls"},
		Short:   "List the elements of a document",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			if len(doc.Elements) == 0 {
				printInfo("%s has no elements", doc.Name)
				printNextStep("Add one", fmt.Sprintf("%s element add %s --type heading --content Hello", appName, args[0]))
				return nil
			}
			fmt.Println(StyleTitle.Render(doc.Name))
			fmt.Println(elementTable(doc.Elements))
			return nil
		},
	}
}

func (c *CLI) elementAddCommand() *cobra.Command {
	var (
		typeName string
		flags    elementFlags
	)
	cmd := &cobra.Command{
		Use:   "add [file]",
		Short: "Append an element to a document",
		Example: `  pagesmith element add page.json --type heading --content "Welcome" -s fontSize=32px
  pagesmith element add page.json --type image --src https://example.com/a.png --x 40 --y 120`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := element.ParseType(typeName)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "%v", err)
			}
			partial, err := flags.element(t)
			if err != nil {
				return err
			}
			c.hintStyles(partial.Styles)
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}

			store := storeFor(doc)
			added := store.Add(partial)
			if err := saveStore(args[0], doc, store.Elements()); err != nil {
				return err
			}
			printSuccess("Added %s %s", added.Type, StyleHighlight.Render(added.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "element type: "+typeList())
	flags.bind(cmd.Flags())
	_ = cmd.MarkFlagRequired("type")
	completeFlags(cmd, map[string]completeFunc{"type": completeElementTypes, "style": completeStyleKeys})
	return cmd
}

func (c *CLI) elementUpdateCommand() *cobra.Command {
	var flags elementFlags
	cmd := &cobra.Command{
		Use:   "update [file] [id]",
		Short: "Change fields of an element",
		Long: `Change fields of an element. Only flags given on the command line are
applied; styles are merged into the element's existing styles.

Locked elements refuse position, size and content changes unless the same
command passes --locked=false.`,
		Example: `  pagesmith element update page.json heading_1700000000000 --content "Hi" -s color=red
  pagesmith element update page.json button_1700000000000 --locked=false --x 10`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.patch(cmd.Flags())
			if err != nil {
				return err
			}
			if p.IsEmpty() {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to update: pass at least one field flag")
			}
			c.hintStyles(p.Styles)
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			id := args[1]

			store := storeFor(doc)
			current, ok := store.Get(id)
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "element %s not found in %s", id, doc.Name)
			}
			unlocking := p.Locked != nil && !*p.Locked
			if current.Locked && p.TouchesLocked() && !unlocking {
				return errors.New(errors.ErrCodeConflict, "element %s is locked", id)
			}
			store.Update(id, p)
			if err := saveStore(args[0], doc, store.Elements()); err != nil {
				return err
			}
			printSuccess("Updated %s", StyleHighlight.Render(id))
			return nil
		},
	}
	flags.bind(cmd.Flags())
	completeFlags(cmd, map[string]completeFunc{"style": completeStyleKeys})
	return cmd
}

func (c *CLI) elementRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove [file] [id]",
		Aliases: []string{"rm"},
		Short:   "Delete an element (and its children)",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			store := storeFor(doc)
			if !store.Remove(args[1]) {
				printWarning("No element %s in %s", args[1], doc.Name)
				return nil
			}
			if err := saveStore(args[0], doc, store.Elements()); err != nil {
				return err
			}
			printSuccess("Removed %s", StyleHighlight.Render(args[1]))
			return nil
		},
	}
}

// saveStore validates elems and writes them back to path.
func saveStore(path string, doc *document, elems []element.Element) error {
	if err := element.ValidateDocument(elems); err != nil {
		return err
	}
	doc.Elements = elems
	return writeDocument(path, doc)
}

// =============================================================================
// Rendering
// =============================================================================

func typeList() string {
	names := make([]string, 0, len(element.Types()))
	for _, t := range element.Types() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

// elementTable renders elems (children indented under their parent).
func elementTable(elems []element.Element) string {
	var rows [][]string
	var flags []string
	element.Walk(elems, func(e *element.Element, depth int) {
		var fl []string
		if e.Locked {
			fl = append(fl, "locked")
		}
		if e.Hidden {
			fl = append(fl, "hidden")
		}
		flags = append(flags, strings.Join(fl, " "))
		rows = append(rows, []string{
			strings.Repeat("  ", depth) + e.ID,
			string(e.Type),
			formatNum(e.X) + "," + formatNum(e.Y),
			formatNum(e.Width) + "×" + formatNum(e.Height),
			truncate(summary(e), 32),
			strings.Join(fl, " "),
		})
	})

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Type", "Position", "Size", "Content", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(flags) && strings.Contains(flags[row], "hidden") {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			switch col {
			case 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case 2, 3:
				return lipgloss.NewStyle().Foreground(colorGray)
			case 5:
				return lipgloss.NewStyle().Foreground(colorYellow)
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

// summary is the field that best identifies an element in a listing.
func summary(e *element.Element) string {
	switch e.Type {
	case element.TypeImage:
		return e.Src
	case element.TypeYouTube:
		return e.VideoURL
	case element.TypeInput:
		return e.Placeholder
	case element.TypeContainer:
		return fmt.Sprintf("%d children", len(e.Children))
	}
	return e.Content
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
