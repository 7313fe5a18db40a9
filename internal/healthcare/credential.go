package healthcare

import (
	"github.com/medrex/healthcare-ledger/pkg/ledger"
	"github.com/medrex/healthcare-ledger/pkg/types"
)

// RegisterProfessional stores a professional credential as given.
func (s *Service) RegisterProfessional(tx ledger.Transaction, profID, name, licenseType, licenseNumber, issueDate, expiryDate, issuerID, status string) (*ProfessionalCredential, error) {
	exists, err := keyExists(tx, profID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, types.NewAlreadyExistsError("the professional %s already exists", profID)
	}

	credential := &ProfessionalCredential{
		ProfID:        profID,
		Name:          name,
		LicenseType:   licenseType,
		LicenseNumber: licenseNumber,
		IssueDate:     issueDate,
		ExpiryDate:    expiryDate,
		IssuerID:      issuerID,
		Status:        status,
	}
	if err := s.commit(tx, EventProfessionalRegistered, profID, credential); err != nil {
		return nil, err
	}
	return credential, nil
}

// VerifyProfessional returns the stored credential verbatim. Expiry and
// status are not interpreted here.
func (s *Service) VerifyProfessional(tx ledger.Transaction, profID string) (*ProfessionalCredential, error) {
	var credential ProfessionalCredential
	found, err := readState(tx, profID, &credential)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.NewNotFoundError("professional %s not found", profID)
	}
	return &credential, nil
}

// ProfessionalExists reports whether a credential exists.
func (s *Service) ProfessionalExists(tx ledger.Transaction, profID string) (bool, error) {
	return keyExists(tx, profID)
}
