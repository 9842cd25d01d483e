package esign

import (
	"github.com/garyjia/esign-wizard/internal/domain/form"
)

// Placeholder identity used when the signer fields are empty
const (
	DefaultSignerFirstName = "Nombre"
	DefaultSignerLastName  = "Apellido"
	DefaultSignerEmail     = "email@example.com"
)

// Signer-identity fields of the projected state
const (
	SignerFirstNameField = "Firmante1Nombre"
	SignerLastNameField  = "Firmante1Apellido"
	SignerEmailField     = "Firmante1Email"
)

// Signer is a person asked to sign
type Signer struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Role groups signers under one identifier
type Role struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Index   int      `json:"index"`
	Signers []Signer `json:"signers"`
	Name    string   `json:"name"`
}

// SignatureField places a signature on a page
type SignatureField struct {
	Width   float64 `json:"width"`
	Top     float64 `json:"top"`
	Height  float64 `json:"height"`
	Left    float64 `json:"left"`
	Page    int     `json:"page"`
	Type    string  `json:"type"`
	Subtype string  `json:"subtype"`
}

// Approval binds a role to the fields it signs
type Approval struct {
	Role   string           `json:"role"`
	ID     string           `json:"id"`
	Fields []SignatureField `json:"fields"`
}

// Document is a file embedded in a package
type Document struct {
	Name          string     `json:"name"`
	ID            string     `json:"id"`
	Approvals     []Approval `json:"approvals"`
	Base64Content string     `json:"base64Content"`
}

// Transaction is the package-creation payload
type Transaction struct {
	Status      string     `json:"status"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Roles       []Role     `json:"roles"`
	Documents   []Document `json:"documents"`
}

// TransactionOptions names the package and its single role
type TransactionOptions struct {
	Name        string
	Description string
	RoleID      string
	DocumentID  string
	Placement   SignatureField
}

// DefaultTransactionOptions returns the onboarding package layout
func DefaultTransactionOptions() TransactionOptions {
	return TransactionOptions{
		Name:        "Persona Juridica",
		Description: "Alta Persona Juridica",
		RoleID:      "Signer1",
		DocumentID:  "Document1",
		Placement: SignatureField{
			Width:   252,
			Top:     880,
			Height:  62,
			Left:    225,
			Page:    0,
			Type:    "SIGNATURE",
			Subtype: "FULLNAME",
		},
	}
}

// SignerFrom reads the signer identity from state, falling back to the placeholder
func SignerFrom(state form.State) Signer {
	return Signer{
		Email:     orDefault(state.String(SignerEmailField), DefaultSignerEmail),
		FirstName: orDefault(state.String(SignerFirstNameField), DefaultSignerFirstName),
		LastName:  orDefault(state.String(SignerLastNameField), DefaultSignerLastName),
	}
}

// BuildTransaction creates a DRAFT package with one signer and one document
func BuildTransaction(pdfBase64 string, state form.State, opts TransactionOptions) *Transaction {
	defaults := DefaultTransactionOptions()
	opts.Name = orDefault(opts.Name, defaults.Name)
	opts.Description = orDefault(opts.Description, defaults.Description)
	opts.RoleID = orDefault(opts.RoleID, defaults.RoleID)
	opts.DocumentID = orDefault(opts.DocumentID, defaults.DocumentID)
	if opts.Placement.Type == "" {
		opts.Placement = defaults.Placement
	}

	return &Transaction{
		Status:      "DRAFT",
		Name:        opts.Name,
		Description: opts.Description,
		Roles: []Role{{
			ID:      opts.RoleID,
			Type:    "SIGNER",
			Index:   1,
			Signers: []Signer{SignerFrom(state)},
			Name:    opts.RoleID,
		}},
		Documents: []Document{{
			Name: opts.Name,
			ID:   opts.DocumentID,
			Approvals: []Approval{{
				Role:   opts.RoleID,
				ID:     "signature1",
				Fields: []SignatureField{opts.Placement},
			}},
			Base64Content: pdfBase64,
		}},
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
