package pdf

// Document represents an opened PDF whose pages are exposed as read-only geometry views
type Document interface {
	// GetPages returns all pages in the document
	GetPages() []Page

	// GetPage returns a specific page by index (0-based)
	GetPage(index int) (Page, error)

	// PageCount returns the total number of pages
	PageCount() int

	// Close releases resources associated with the document
	Close() error
}

// Page represents a single page in display orientation.
// All rectangles share the coordinate space of GetBBox, whose origin is (0,0) at the top-left.
type Page interface {
	// GetPageNumber returns the page number (1-based)
	GetPageNumber() int

	// GetWidth returns the page width as displayed
	GetWidth() float64

	// GetHeight returns the page height as displayed
	GetHeight() float64

	// GetRotation returns the effective page rotation in degrees (0, 90, 180 or 270)
	GetRotation() int

	// GetBBox returns the page bounding box
	GetBBox() BoundingBox

	// SearchFor returns one rectangle per literal occurrence of text
	SearchFor(text string) []BoundingBox

	// TextRuns returns word-level text rectangles in reading order
	TextRuns() []BoundingBox

	// DrawingBoxes returns the bounds of every painted vector path
	DrawingBoxes() []BoundingBox

	// BlockBoxes returns text block and image rectangles
	BlockBoxes() []BoundingBox

	// ExtractText returns the page text, one line per text line
	ExtractText() string
}
