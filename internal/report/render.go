package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/guptarohit/asciigraph"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/pucktable/internal/scene"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ccff")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	drivenStyle = cellStyle.
			Foreground(lipgloss.Color("#ffaa00"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666688"))
)

// Table renders the final transforms of r as a bordered table.
func Table(r *Result) string {
	f := r.Final
	rows := make([][]string, 0, len(f.Objects))
	driven := make([]bool, 0, len(f.Objects))
	for _, o := range f.Objects {
		q := o.Rotation
		rows = append(rows, []string{
			strconv.Itoa(int(o.ID)),
			o.Name,
			o.Kind,
			o.Color,
			vec(o.Position[0], o.Position[1], o.Position[2]),
			fmt.Sprintf("%.3f %s", q.W, vec(q.V[0], q.V[1], q.V[2])),
		})
		driven = append(driven, o.Driven)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(subtleStyle).
		Headers("ID", "NAME", "KIND", "COLOR", "POSITION", "ROTATION (W XYZ)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(driven) && driven[row]:
				return drivenStyle
			default:
				return cellStyle
			}
		})

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("t=%.2fs  frames=%d  contacts=%d", f.Time, r.Frames, f.Contacts)))
	b.WriteString("\n")
	b.WriteString(t.Render())
	return b.String()
}

func vec(x, y, z float64) string {
	return fmt.Sprintf("(%7.3f, %7.3f, %7.3f)", x, y, z)
}

// Plot draws the tracked height series. It returns an empty string when
// nothing was tracked.
func Plot(r *Result, width, height int) string {
	if len(r.Heights) == 0 {
		return ""
	}
	return asciigraph.Plot(r.Heights,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.Caption(fmt.Sprintf("%s height over %d frames", r.Track, len(r.Heights))),
	)
}

// Snapshot is the YAML form of a frame.
type Snapshot struct {
	Time     float64          `yaml:"time"`
	Frame    uint64           `yaml:"frame"`
	Contacts int              `yaml:"contacts"`
	Objects  []ObjectSnapshot `yaml:"objects"`
}

// ObjectSnapshot is the YAML form of one object.
type ObjectSnapshot struct {
	Name     string     `yaml:"name"`
	Kind     string     `yaml:"kind"`
	Color    string     `yaml:"color"`
	Position [3]float64 `yaml:"position,flow"`
	// Rotation is x, y, z, w.
	Rotation [4]float64 `yaml:"rotation,flow"`
	Driven   bool       `yaml:"driven,omitempty"`
}

// NewSnapshot converts f.
func NewSnapshot(f scene.Frame) Snapshot {
	s := Snapshot{Time: f.Time, Frame: f.Seq, Contacts: f.Contacts}
	for _, o := range f.Objects {
		q := o.Rotation
		s.Objects = append(s.Objects, ObjectSnapshot{
			Name:     o.Name,
			Kind:     o.Kind,
			Color:    o.Color,
			Position: o.Position,
			Rotation: [4]float64{q.V[0], q.V[1], q.V[2], q.W},
			Driven:   o.Driven,
		})
	}
	return s
}

// YAML encodes the final frame of r.
func YAML(r *Result) ([]byte, error) {
	return yaml.Marshal(NewSnapshot(r.Final))
}
