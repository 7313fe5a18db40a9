package healthcare

const (
	// IndefiniteExpiry marks an access consent that never expires
	IndefiniteExpiry = "indefinido"

	// StatusManufactured is the status of the event appended at batch creation
	StatusManufactured = "Fabricado"

	researchConsentPrefix = "RESEARCHCONSENT"
)

// PatientRecord is the ledger value stored under a patient ID
type PatientRecord struct {
	PatientID      string          `json:"patientID"`
	Name           string          `json:"name"`
	DateOfBirth    string          `json:"dateOfBirth"`
	Entries        []RecordEntry   `json:"entries"`
	AccessConsents []AccessConsent `json:"accessConsents"`
}

// RecordEntry is one immutable clinical event in a patient record
type RecordEntry struct {
	EntryID     string `json:"entryID"`
	Timestamp   string `json:"timestamp"`
	EventType   string `json:"eventType"`
	Description string `json:"description"`
	DoctorID    string `json:"doctorID"`
	HospitalID  string `json:"hospitalID"`
}

// AccessConsent is a purpose-scoped, time-bounded grant to view a patient
// record. ExpiresAt holds IndefiniteExpiry when the grant has no end.
type AccessConsent struct {
	ConsenterID string `json:"consenterID"`
	Purpose     string `json:"purpose"`
	GrantedAt   string `json:"grantedAt"`
	ExpiresAt   string `json:"expiresAt"`
	IsActive    bool   `json:"isActive"`
}

// DrugBatch is the ledger value stored under a batch ID
type DrugBatch struct {
	BatchID         string       `json:"batchID"`
	ProductName     string       `json:"productName"`
	Manufacturer    string       `json:"manufacturer"`
	ManufactureDate string       `json:"manufactureDate"`
	ExpiryDate      string       `json:"expiryDate"`
	History         []BatchEvent `json:"history"`
}

// BatchEvent is one chain-of-custody step of a drug batch
type BatchEvent struct {
	EventID   string `json:"eventID"`
	Timestamp string `json:"timestamp"`
	Location  string `json:"location"`
	Status    string `json:"status"`
	ActorID   string `json:"actorID"`
}

// ProfessionalCredential is a professional license record
type ProfessionalCredential struct {
	ProfID        string `json:"profID"`
	Name          string `json:"name"`
	LicenseType   string `json:"licenseType"`
	LicenseNumber string `json:"licenseNumber"`
	IssueDate     string `json:"issueDate"`
	ExpiryDate    string `json:"expiryDate"`
	IssuerID      string `json:"issuerID"`
	Status        string `json:"status"`
}

// PaymentClaim is a payment claim for a rendered service
type PaymentClaim struct {
	ClaimID     string  `json:"claimID"`
	PatientID   string  `json:"patientID"`
	ServiceID   string  `json:"serviceID"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	ClaimDate   string  `json:"claimDate"`
	SubmitterID string  `json:"submitterID"`
	Status      string  `json:"status"`
}

// ResearchConsent records a patient's consent to one research project. It
// lives under its own composite key, independent of the patient record.
type ResearchConsent struct {
	PatientID          string `json:"patientID"`
	ResearchProjectID  string `json:"researchProjectID"`
	ConsentDate        string `json:"consentDate"`
	DataTypesConsented string `json:"dataTypesConsented"`
	IsActive           bool   `json:"isActive"`
}

// ResearchConsentKey builds the composite key of a research consent.
func ResearchConsentKey(patientID, researchProjectID string) string {
	return researchConsentPrefix + ":" + patientID + ":" + researchProjectID
}

// normalize replaces nil sequences so records always serialize them as
// JSON arrays.
func (p *PatientRecord) normalize() {
	if p.Entries == nil {
		p.Entries = []RecordEntry{}
	}
	if p.AccessConsents == nil {
		p.AccessConsents = []AccessConsent{}
	}
}

func (b *DrugBatch) normalize() {
	if b.History == nil {
		b.History = []BatchEvent{}
	}
}

func (p *PatientRecord) hasEntry(entryID string) bool {
	for _, e := range p.Entries {
		if e.EntryID == entryID {
			return true
		}
	}
	return false
}

func (b *DrugBatch) hasEvent(eventID string) bool {
	for _, e := range b.History {
		if e.EventID == eventID {
			return true
		}
	}
	return false
}
