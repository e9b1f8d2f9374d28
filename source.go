package warn

import (
	"regexp"
	"time"
)

// Kind identifies how a document is published.
type Kind string

// Supported document kinds.
const (
	KindHTML Kind = "html"
	KindPDF  Kind = "pdf"
)

// LayoutMode selects the row reconstruction algorithm.
type LayoutMode string

// Supported layout modes.
const (
	// LayoutGrid treats each table row as a record, repairing page splits,
	// skew and repeated headers.
	LayoutGrid LayoutMode = "grid"

	// LayoutLabels treats rows as label/value pairs that together form one
	// record.
	LayoutLabels LayoutMode = "labels"
)

// DefaultUserAgent is sent when a source does not configure one. Several
// state sites reject obvious bot user agents.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Pagination and retry defaults.
const (
	DefaultMaxHops         = 500
	DefaultPageParam       = "page"
	DefaultLinkContainer   = "tfoot"
	DefaultJoinSeparator   = " "
	DefaultLabelSeparator  = ", "
	DefaultFetchTimeout    = 30 * time.Second
	DefaultRequestsPerSec  = 2.0
	DefaultMaxAttempts     = 4
	DefaultInitialDelay    = 1 * time.Second
	DefaultMaxDelay        = 30 * time.Second
	DefaultMaxElapsed      = 2 * time.Minute
	DefaultRetryMultiplier = 2.0
)

var sourceIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Source describes one state's WARN notice publication. Everything that
// differs between sources is data here, so one engine serves them all.
type Source struct {
	ID      string        `yaml:"id"`
	Name    string        `yaml:"name"`
	Output  string        `yaml:"output"`  // CSV file name, default "<id>.csv"
	Timeout time.Duration `yaml:"timeout"` // bounds the whole harvest
	Header  []string      `yaml:"header"`  // CSV header; taken from the first table header when empty

	// Documents are either listed as seeds or discovered on an index page.
	Index *Index `yaml:"index"`
	Seeds []Seed `yaml:"seeds"`

	// KeyPattern extracts the cache sub-identifier from a seed URL with its
	// first capture group, e.g. `year=([0-9]{4})`.
	KeyPattern string `yaml:"key_pattern"`

	Transport  Transport        `yaml:"transport"`
	Retry      RetryPolicy      `yaml:"retry"`
	Pagination Pagination       `yaml:"pagination"`
	Formats    map[Kind]*Format `yaml:"formats"`
}

// Index is a landing page that links to the source's documents.
type Index struct {
	URL         string `yaml:"url"`
	SeedPattern string `yaml:"seed_pattern"` // hrefs matching this are documents
	PDFPattern  string `yaml:"pdf_pattern"`  // matching documents are PDFs
}

// Seed is the first URL of one document.
type Seed struct {
	URL  string `yaml:"url"`
	Kind Kind   `yaml:"kind"`
	Key  string `yaml:"key"` // cache sub-identifier; derived from KeyPattern when empty
}

// Transport configures how a source is fetched.
type Transport struct {
	UserAgent string            `yaml:"user_agent"`
	Headers   map[string]string `yaml:"headers"`

	// InsecureSkipVerify disables TLS certificate verification for this
	// source only. It removes protection against interception and exists for
	// legacy endpoints with broken certificate chains.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	Browser           bool          `yaml:"browser"` // render with headless Chrome
	Timeout           time.Duration `yaml:"timeout"` // per request
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	RetryableStatuses []int         `yaml:"retryable_statuses"`
}

// RetryPolicy bounds retries of transient fetch failures.
type RetryPolicy struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	MaxElapsed   time.Duration `yaml:"max_elapsed"`
	Multiplier   float64       `yaml:"multiplier"`
}

// DefaultRetryPolicy returns the policy used when a source sets none:
// 4 attempts, delays 1s, 2s, 4s, capped at two minutes overall.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		MaxDelay:     DefaultMaxDelay,
		MaxElapsed:   DefaultMaxElapsed,
		Multiplier:   DefaultRetryMultiplier,
	}
}

// Pagination configures next-page discovery.
type Pagination struct {
	MaxHops   int    `yaml:"max_hops"`
	Container string `yaml:"container"` // CSS selector holding the pager links
	Param     string `yaml:"param"`     // query parameter carrying the page number
}

// Format describes how to read one kind of document.
type Format struct {
	Table  Table  `yaml:"table"`
	Layout Layout `yaml:"layout"`
}

// Table configures grid extraction.
type Table struct {
	Selector string `yaml:"selector"` // HTML tables to read, default "table"

	// Columns are the left x-coordinates of PDF table columns, in points.
	// When empty, PDF cells are split on horizontal gaps.
	Columns      []float64 `yaml:"columns"`
	GapTolerance float64   `yaml:"gap_tolerance"`
}

// Layout configures row reconstruction.
type Layout struct {
	Mode LayoutMode `yaml:"mode"`

	// Rows whose HeaderColumn cell equals one of HeaderLabels are redundant
	// headers and are dropped.
	HeaderColumn int      `yaml:"header_column"`
	HeaderLabels []string `yaml:"header_labels"`

	Continuation Continuation `yaml:"continuation"`
	Skew         *SkewRule    `yaml:"skew"`

	// ElideBlanks drops empty cells so populated fields keep their order.
	ElideBlanks bool `yaml:"elide_blanks"`

	Labels *LabelLayout `yaml:"labels"`
}

// Continuation configures detection of a row split across a page break.
// A page's first row continues the previous page's last row when every
// BlankColumns cell of the candidate is blank and every PendingColumns cell
// of the open row is blank. At least one list must be set to enable the
// check.
type Continuation struct {
	BlankColumns   []int   `yaml:"blank_columns"`
	PendingColumns []int   `yaml:"pending_columns"`
	Separator      *string `yaml:"separator"` // joins fragments of the same cell
}

// Enabled reports whether continuation detection is configured.
func (c Continuation) Enabled() bool {
	return len(c.BlankColumns) > 0 || len(c.PendingColumns) > 0
}

// Join returns the separator used to concatenate split cell fragments.
func (c Continuation) Join() string {
	if c.Separator == nil {
		return DefaultJoinSeparator
	}
	return *c.Separator
}

// SkewRule normalizes page-split fragments that carry spurious columns: a
// continuation row wider than Width has the Drop indices removed before it
// is merged.
type SkewRule struct {
	Width int   `yaml:"width"`
	Drop  []int `yaml:"drop"`
}

// LabelLayout configures label/value reconstruction.
type LabelLayout struct {
	LabelColumn int `yaml:"label_column"`
	ValueColumn int `yaml:"value_column"`

	// Subject is the label of the free-text field that names the record.
	// It becomes the first output column.
	Subject string `yaml:"subject"`

	// Fields are the whitelisted labels, in output column order after the
	// subject.
	Fields []string `yaml:"fields"`

	// Terminator is the field that always closes a record.
	Terminator string `yaml:"terminator"`

	// Separator joins subject fragments.
	Separator string `yaml:"separator"`
}

// Width returns the number of output columns.
func (l *LabelLayout) Width() int {
	return 1 + len(l.Fields)
}

// SetDefaults fills unset fields with defaults.
func (s *Source) SetDefaults() {
	if s.Output == "" && s.ID != "" {
		s.Output = s.ID + ".csv"
	}
	if s.Transport.UserAgent == "" {
		s.Transport.UserAgent = DefaultUserAgent
	}
	if s.Transport.Timeout == 0 {
		s.Transport.Timeout = DefaultFetchTimeout
	}
	if s.Transport.RequestsPerSecond == 0 {
		s.Transport.RequestsPerSecond = DefaultRequestsPerSec
	}

	def := DefaultRetryPolicy()
	if s.Retry.MaxAttempts == 0 {
		s.Retry.MaxAttempts = def.MaxAttempts
	}
	if s.Retry.InitialDelay == 0 {
		s.Retry.InitialDelay = def.InitialDelay
	}
	if s.Retry.MaxDelay == 0 {
		s.Retry.MaxDelay = def.MaxDelay
	}
	if s.Retry.MaxElapsed == 0 {
		s.Retry.MaxElapsed = def.MaxElapsed
	}
	if s.Retry.Multiplier == 0 {
		s.Retry.Multiplier = def.Multiplier
	}

	if s.Pagination.MaxHops == 0 {
		s.Pagination.MaxHops = DefaultMaxHops
	}
	if s.Pagination.Container == "" {
		s.Pagination.Container = DefaultLinkContainer
	}
	if s.Pagination.Param == "" {
		s.Pagination.Param = DefaultPageParam
	}

	for i := range s.Seeds {
		if s.Seeds[i].Kind == "" {
			s.Seeds[i].Kind = KindHTML
		}
	}

	if s.Formats == nil {
		s.Formats = make(map[Kind]*Format)
	}
	for _, kind := range []Kind{KindHTML, KindPDF} {
		f, ok := s.Formats[kind]
		if !ok || f == nil {
			f = &Format{}
			s.Formats[kind] = f
		}
		if f.Layout.Mode == "" {
			f.Layout.Mode = LayoutGrid
		}
		if f.Table.Selector == "" {
			f.Table.Selector = "table"
		}
		if l := f.Layout.Labels; l != nil {
			if l.ValueColumn == 0 && l.LabelColumn == 0 {
				l.ValueColumn = 1
			}
			if l.Separator == "" {
				l.Separator = DefaultLabelSeparator
			}
		}
	}
}

// Format returns the format for a document kind.
func (s *Source) Format(kind Kind) *Format {
	if f, ok := s.Formats[kind]; ok && f != nil {
		return f
	}
	return &Format{Table: Table{Selector: "table"}, Layout: Layout{Mode: LayoutGrid}}
}

// Validate returns an error if the source contains invalid fields.
func (s *Source) Validate() error {
	if !sourceIDPattern.MatchString(s.ID) {
		return Errorf(EINVALID, "source id %q must be lowercase letters, digits, '-' or '_'", s.ID)
	}
	if s.Index == nil && len(s.Seeds) == 0 {
		return Errorf(EINVALID, "source %s: index or seeds required", s.ID)
	}
	if s.Index != nil {
		if s.Index.URL == "" {
			return Errorf(EINVALID, "source %s: index url required", s.ID)
		}
		for _, p := range []string{s.Index.SeedPattern, s.Index.PDFPattern} {
			if _, err := regexp.Compile(p); err != nil {
				return Errorf(EINVALID, "source %s: invalid index pattern %q: %v", s.ID, p, err)
			}
		}
	}
	for i, seed := range s.Seeds {
		if seed.URL == "" {
			return Errorf(EINVALID, "source %s: seed[%d] url required", s.ID, i)
		}
		if seed.Kind != KindHTML && seed.Kind != KindPDF {
			return Errorf(EINVALID, "source %s: seed[%d] kind %q must be html or pdf", s.ID, i, seed.Kind)
		}
	}
	if s.KeyPattern != "" {
		re, err := regexp.Compile(s.KeyPattern)
		if err != nil {
			return Errorf(EINVALID, "source %s: invalid key_pattern: %v", s.ID, err)
		}
		if re.NumSubexp() < 1 {
			return Errorf(EINVALID, "source %s: key_pattern needs a capture group", s.ID)
		}
	}
	if s.Timeout < 0 || s.Transport.Timeout < 0 {
		return Errorf(EINVALID, "source %s: timeouts must be non-negative", s.ID)
	}
	if s.Retry.MaxAttempts < 1 {
		return Errorf(EINVALID, "source %s: retry.max_attempts must be at least 1", s.ID)
	}
	if s.Retry.Multiplier < 1 {
		return Errorf(EINVALID, "source %s: retry.multiplier must be >= 1.0", s.ID)
	}
	if s.Retry.InitialDelay < 0 || s.Retry.MaxDelay < 0 || s.Retry.MaxElapsed < 0 {
		return Errorf(EINVALID, "source %s: retry delays must be non-negative", s.ID)
	}
	if s.Pagination.MaxHops < 1 {
		return Errorf(EINVALID, "source %s: pagination.max_hops must be at least 1", s.ID)
	}
	for kind, f := range s.Formats {
		if f == nil {
			continue
		}
		if err := f.Layout.Validate(); err != nil {
			return Errorf(EINVALID, "source %s: %s layout: %s", s.ID, kind, ErrorMessage(err))
		}
	}
	return nil
}

// Validate returns an error if the layout is inconsistent.
func (l *Layout) Validate() error {
	switch l.Mode {
	case LayoutGrid:
	case LayoutLabels:
		if l.Labels == nil || l.Labels.Subject == "" || len(l.Labels.Fields) == 0 {
			return Errorf(EINVALID, "labels mode requires labels.subject and labels.fields")
		}
		if l.Labels.LabelColumn < 0 || l.Labels.ValueColumn < 0 || l.Labels.LabelColumn == l.Labels.ValueColumn {
			return Errorf(EINVALID, "labels.label_column and labels.value_column must be distinct and non-negative")
		}
		if l.Labels.Terminator != "" && !contains(l.Labels.Fields, l.Labels.Terminator) {
			return Errorf(EINVALID, "labels.terminator %q is not one of labels.fields", l.Labels.Terminator)
		}
	default:
		return Errorf(EINVALID, "unknown mode %q", l.Mode)
	}
	if l.HeaderColumn < 0 {
		return Errorf(EINVALID, "header_column must be non-negative")
	}
	for _, idx := range append(append([]int{}, l.Continuation.BlankColumns...), l.Continuation.PendingColumns...) {
		if idx < 0 {
			return Errorf(EINVALID, "continuation columns must be non-negative")
		}
	}
	if l.Skew != nil {
		if l.Skew.Width < 1 || len(l.Skew.Drop) == 0 {
			return Errorf(EINVALID, "skew requires width >= 1 and at least one drop index")
		}
		for _, idx := range l.Skew.Drop {
			if idx < 0 {
				return Errorf(EINVALID, "skew drop indices must be non-negative")
			}
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
