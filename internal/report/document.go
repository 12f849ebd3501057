package report

import (
	"time"

	"github.com/nholik/sharecrawl/internal/model"
)

// Row kinds in the flat listing.
const (
	// RowFolder marks one row per crawled node.
	RowFolder = "folder"

	// RowFile marks one row per extracted leaf resource.
	RowFile = "file"
)

// generatedAtFormat is the artifact timestamp layout: UTC at second
// precision with an explicit Z suffix.
const generatedAtFormat = "2006-01-02T15:04:05Z"

// Meta describes the parameters one artifact was produced with.
type Meta struct {
	// GeneratedAt is the crawl completion time, UTC at second precision.
	GeneratedAt string `json:"generated_at"`

	// RootLocator is the share link the crawl started from.
	RootLocator string `json:"root_url"`

	// MaxDepth is the depth budget the crawl ran with. Null means
	// unbounded.
	MaxDepth *int `json:"max_depth"`

	// Extensions is the leaf suffix allow-list.
	Extensions []string `json:"image_extensions"`

	// Annotations carries caller-supplied key/value pairs, such as the
	// batch target identifier.
	Annotations map[string]string `json:"annotations,omitempty"`
}

// Row is one line of the flat listing.
type Row struct {
	// Type is RowFolder or RowFile.
	Type string `json:"type"`

	// Path is the location of the folder, or of the folder containing
	// the file.
	Path string `json:"path"`

	// Name and PreviewSrc are set on file rows only.
	Name       string `json:"name,omitempty"`
	PreviewSrc string `json:"preview_src,omitempty"`

	// Folder names on folder rows.
	FolderDisplayName string `json:"folder_display_name,omitempty"`
	FolderEncodedName string `json:"folder_encoded_name,omitempty"`

	// Parent folder names on file rows.
	ParentDisplayName string `json:"parent_folder_display_name,omitempty"`
	ParentEncodedName string `json:"parent_folder_encoded_name,omitempty"`
}

// Document is the durable per-target artifact.
type Document struct {
	Meta Meta        `json:"meta"`
	Tree *model.Node `json:"tree"`
	Flat []Row       `json:"flat"`
}

// NewDocument derives an artifact document from a crawl result.
// The derivation never mutates the result; calling it twice with the
// same inputs yields equal documents. The document owns a copy of the
// tree whose leaves carry no source location: inside the tree the
// owning node's location covers it, so the copy holds exactly what the
// JSON form holds and a written document reads back equal.
func NewDocument(result *model.CrawlResult, annotations map[string]string) *Document {
	return &Document{
		Meta: Meta{
			GeneratedAt: result.Meta.GeneratedAt.UTC().Format(generatedAtFormat),
			RootLocator: result.Meta.RootLocator,
			MaxDepth:    result.Meta.MaxDepth,
			Extensions:  append([]string(nil), result.Meta.Extensions...),
			Annotations: annotations,
		},
		Tree: artifactTree(result.Root),
		Flat: Flatten(result.Root),
	}
}

// artifactTree copies a crawl tree into its serializable form, dropping
// each leaf's source location.
func artifactTree(node *model.Node) *model.Node {
	out := &model.Node{
		Location:    node.Location,
		DisplayName: node.DisplayName,
		EncodedName: node.EncodedName,
	}
	if len(node.Leaves) > 0 {
		out.Leaves = make([]model.LeafResource, len(node.Leaves))
		for i, leaf := range node.Leaves {
			out.Leaves[i] = model.LeafResource{Name: leaf.Name, PreviewSrc: leaf.PreviewSrc}
		}
	}
	for _, child := range node.Children {
		out.Children = append(out.Children, artifactTree(child))
	}
	return out
}

// Flatten linearizes a tree depth first: one folder row per node, then
// one file row per leaf, before descending into children. Row order
// follows tree order, which follows remote listing order.
func Flatten(node *model.Node) []Row {
	rows := make([]Row, 0, node.NodeCount()+node.LeafCount())
	return appendRows(rows, node)
}

func appendRows(rows []Row, node *model.Node) []Row {
	rows = append(rows, Row{
		Type:              RowFolder,
		Path:              node.Location,
		FolderDisplayName: node.DisplayName,
		FolderEncodedName: node.EncodedName,
	})

	for _, leaf := range node.Leaves {
		rows = append(rows, Row{
			Type:              RowFile,
			Path:              node.Location,
			Name:              leaf.Name,
			PreviewSrc:        leaf.PreviewSrc,
			ParentDisplayName: node.DisplayName,
			ParentEncodedName: node.EncodedName,
		})
	}

	for _, child := range node.Children {
		rows = appendRows(rows, child)
	}
	return rows
}

// ParseGeneratedAt parses an artifact timestamp back into a time.Time.
func ParseGeneratedAt(s string) (time.Time, error) {
	return time.Parse(generatedAtFormat, s)
}
