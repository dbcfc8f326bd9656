package consultation

type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
	KindChat  Kind = "chat"
)

type Offer struct {
	Price float64
}

// priceTable is the only source of consultation prices.
var priceTable = map[Kind]Offer{
	KindVideo: {Price: 200},
	KindAudio: {Price: 150},
	KindChat:  {Price: 100},
}

func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := priceTable[k]
	return k, ok
}

func OfferFor(k Kind) (Offer, bool) {
	o, ok := priceTable[k]
	return o, ok
}

const MaxNotesLength = 1000
