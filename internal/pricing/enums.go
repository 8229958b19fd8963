// Package pricing holds the closed value domain of the MDR engine: card
// brands, payment modalities, sales channels, the link status state machine
// and the numeric rules for margins and base costs. Everything here is pure —
// no persistence, no HTTP — so the rules can be tested in isolation.
package pricing

// Brand is a card scheme accepted by the acquirer.
type Brand string

const (
	BrandVisa       Brand = "visa"
	BrandMastercard Brand = "mastercard"
	BrandElo        Brand = "elo"
	BrandAmex       Brand = "amex"
	BrandHipercard  Brand = "hipercard"

	// BrandAll tags rate lines that are not brand-specific (anticipation,
	// PIX components). Stored once, never repeated per card brand.
	BrandAll Brand = "ALL"
)

// Modality is the payment product a rate line applies to.
type Modality string

const (
	ModalityDebit        Modality = "debit"
	ModalityCredit       Modality = "credit"
	ModalityCredit2x     Modality = "credit_2x"
	ModalityCredit7x     Modality = "credit_7x"
	ModalityPix          Modality = "pix"
	ModalityVoucher      Modality = "voucher"
	ModalityPrepaid      Modality = "prepaid"
	ModalityAnticipation Modality = "anticipation"
)

// Channel is the sales channel a rate line applies to.
type Channel string

const (
	ChannelPos    Channel = "pos"
	ChannelOnline Channel = "online"
)

var cardBrands = []Brand{BrandVisa, BrandMastercard, BrandElo, BrandAmex, BrandHipercard}

var allModalities = []Modality{
	ModalityDebit, ModalityCredit, ModalityCredit2x, ModalityCredit7x,
	ModalityPix, ModalityVoucher, ModalityPrepaid, ModalityAnticipation,
}

// RequiredModalities is the set whose margins must be positive for a link to
// be considered complete. Anticipation, voucher, prepaid and 7x installments
// are optional products and never gate completeness.
var RequiredModalities = []Modality{ModalityDebit, ModalityCredit, ModalityCredit2x, ModalityPix}

// CardBrands returns the card schemes (excluding the ALL pseudo-brand).
func CardBrands() []Brand { return cardBrands }

// Modalities returns every known payment modality.
func Modalities() []Modality { return allModalities }

func (b Brand) Valid() bool {
	if b == BrandAll {
		return true
	}
	for _, cb := range cardBrands {
		if b == cb {
			return true
		}
	}
	return false
}

func (m Modality) Valid() bool {
	for _, km := range allModalities {
		if m == km {
			return true
		}
	}
	return false
}

func (c Channel) Valid() bool { return c == ChannelPos || c == ChannelOnline }

// OrDefault resolves an empty channel to pos, the historical default for
// every rate line that does not say otherwise.
func (c Channel) OrDefault() Channel {
	if c == "" {
		return ChannelPos
	}
	return c
}
