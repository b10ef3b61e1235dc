package merriamwebster

// Entry holds a single dictionary entry of an API response.
// Optional string fields are pointers: an absent field and an empty one are rendered differently.
// Slices are encoded without omitempty for the same reason.
type Entry struct {
	Meta             Meta             `json:"meta"`
	Homograph        *int             `json:"hom,omitempty"`
	HeadwordInfo     HeadwordInfo     `json:"hwi"`
	FunctionalLabel  *string          `json:"fl,omitempty"`
	Labels           []string         `json:"lbs"`
	Inflections      []Inflection     `json:"ins"`
	CrossReferences  []CrossReference `json:"cxs"`
	Definitions      []Definition     `json:"def"`
	Etymology        DefiningText     `json:"et"`
	Date             *string          `json:"date,omitempty"`
	ShortDefinitions []string         `json:"shortdef"`
}

// Meta holds entry metadata
type Meta struct {
	ID        string   `json:"id"`
	UUID      string   `json:"uuid"`
	Sort      string   `json:"sort"`
	Source    string   `json:"src"`
	Section   string   `json:"section"`
	Stems     []string `json:"stems"`
	Offensive bool     `json:"offensive"`
}

// HeadwordInfo holds headword with its pronunciations
type HeadwordInfo struct {
	Headword       string          `json:"hw"`
	Pronunciations []Pronunciation `json:"prs"`
}

// Pronunciation holds written pronunciation and a reference to its audio
type Pronunciation struct {
	Written     string  `json:"mw"`
	LabelBefore *string `json:"l,omitempty"`
	LabelAfter  *string `json:"l2,omitempty"`
	Punctuation *string `json:"pun,omitempty"`
	Sound       *Sound  `json:"sound,omitempty"`
}

// Sound references pronunciation audio file
type Sound struct {
	Audio string `json:"audio"`
	Ref   string `json:"ref,omitempty"`
	Stat  string `json:"stat,omitempty"`
}

// Inflection holds a single inflected form
type Inflection struct {
	Label          *string         `json:"il,omitempty"`
	Form           *string         `json:"if,omitempty"`
	Cutback        *string         `json:"ifc,omitempty"`
	Pronunciations []Pronunciation `json:"prs"`
}

// CrossReference holds a cross-reference with its targets
type CrossReference struct {
	Label   string                 `json:"cxl"`
	Targets []CrossReferenceTarget `json:"cxtis"`
}

// CrossReferenceTarget holds a single cross-reference target
type CrossReferenceTarget struct {
	Label  *string `json:"cxl,omitempty"`
	Target string  `json:"cxt"`
	Sense  *string `json:"cxn,omitempty"`
}

// Definition holds a definition section: optional verb divider and sense sequences
type Definition struct {
	VerbDivider    *string        `json:"vd,omitempty"`
	SenseSequences SenseSequences `json:"sseq"`
	StatusLabels   []string       `json:"sls"`
}

// Variant holds a variant spelling
type Variant struct {
	Name           string          `json:"va"`
	Label          *string         `json:"vl,omitempty"`
	Pronunciations []Pronunciation `json:"prs"`
}

// DividedSense holds a sense introduced by a divider like "also" or "specifically"
type DividedSense struct {
	Divider string       `json:"sd"`
	Text    DefiningText `json:"dt"`
}

// VerbalIllustration is an example sentence
type VerbalIllustration struct {
	Text  string       `json:"t"`
	Quote *Attribution `json:"aq,omitempty"`
}

// Attribution of a quote
type Attribution struct {
	Author *string `json:"auth,omitempty"`
	Source *string `json:"source,omitempty"`
	Date   *string `json:"aqdate,omitempty"`
}

// CalledAlso holds a "called also" note
type CalledAlso struct {
	Intro   string             `json:"intro"`
	Targets []CalledAlsoTarget `json:"cats"`
}

// CalledAlsoTarget holds a single "called also" target
type CalledAlsoTarget struct {
	Text        string  `json:"cat"`
	Ref         *string `json:"catref,omitempty"`
	ParenNumber *string `json:"pn,omitempty"`
	Label       *string `json:"psl,omitempty"`
}
