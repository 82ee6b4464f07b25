package models

// Channel identifies a harvestable source group or broadcast channel.
type Channel struct {
	ID         int64
	AccessHash int64
	Title      string
	Broadcast  bool
}

// MediaRef carries the Telegram file location inputs needed to download a
// message's attachment. Photo fields are set for photo media, Doc fields
// for document media.
type MediaRef struct {
	PhotoID         int64
	PhotoAccessHash int64
	PhotoFileRef    []byte
	PhotoThumbSize  string

	DocID         int64
	DocAccessHash int64
	DocFileRef    []byte
}

// Attachment holds the raw facts about a message's media as declared on the
// wire. Turning them into a MediaKind is the classifier's job.
type Attachment struct {
	Photo       bool
	MimeType    string
	Duration    int // seconds, meaningful only when HasDuration
	HasDuration bool
	Ref         MediaRef
}

// Message is a single message from a channel's history. IDs strictly
// decrease as pagination walks toward older messages.
type Message struct {
	ID         int
	Attachment *Attachment
}

// Kind is the classified media category of a message's attachment.
type Kind int

const (
	KindNone Kind = iota
	KindPhoto
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	default:
		return "none"
	}
}

// MediaKind is the classifier's verdict for one message.
type MediaKind struct {
	Kind          Kind
	Duration      int // seconds, meaningful only when DurationKnown
	DurationKnown bool
}

// RequestedCounts is the operator's per-channel download request.
type RequestedCounts struct {
	Photos int
	Videos int
}

// Available is the counting pass's tally of downloadable media in a channel.
// The video tally does not apply the duration filter; that happens at fetch
// time.
type Available struct {
	Photos int
	Videos int
}

// FetchSummary reports what one channel's fetch pass actually downloaded.
// Err is set when the channel failed partway; the counts then cover what
// completed before the failure.
type FetchSummary struct {
	Photos int
	Videos int
	Err    error
}

// PublishOutcome reports a single publish attempt. Publish results never
// feed back into quota state.
type PublishOutcome struct {
	Success bool
	Reason  string
}
