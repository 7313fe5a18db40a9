package replay

import (
	"sort"

	"github.com/medrex/healthcare-ledger/internal/healthcare"
	"github.com/medrex/healthcare-ledger/pkg/ledger"
	"github.com/medrex/healthcare-ledger/pkg/types"
)

type operation struct {
	params []string
	call   func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error)
}

var operations = map[string]operation{
	"createPatient": {
		params: []string{"patientID", "name", "dateOfBirth"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.CreatePatient(tx, a[0], a[1], a[2])
		},
	},
	"addRecordEntry": {
		params: []string{"patientID", "entryID", "eventType", "description", "doctorID", "hospitalID", "timestamp"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.AddRecordEntry(tx, a[0], a[1], a[2], a[3], a[4], a[5], a[6])
		},
	},
	"patientExists": {
		params: []string{"patientID"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.PatientExists(tx, a[0])
		},
	},
	"grantPatientAccess": {
		params: []string{"patientID", "consenterID", "purpose", "expiresAt", "grantedAt"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.GrantPatientAccess(tx, a[0], a[1], a[2], a[3], a[4])
		},
	},
	"revokePatientAccess": {
		params: []string{"patientID", "consenterID", "purpose"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.RevokePatientAccess(tx, a[0], a[1], a[2])
		},
	},
	"queryPatientRecord": {
		params: []string{"patientID", "requestingConsenterID", "purpose"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.QueryPatientRecord(tx, a[0], a[1], a[2])
		},
	},
	"createDrugBatch": {
		params: []string{"batchID", "productName", "manufacturer", "manufactureDate", "expiryDate"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.CreateDrugBatch(tx, a[0], a[1], a[2], a[3], a[4])
		},
	},
	"updateDrugBatchStatus": {
		params: []string{"batchID", "eventID", "location", "status", "actorID", "timestamp"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.UpdateDrugBatchStatus(tx, a[0], a[1], a[2], a[3], a[4], a[5])
		},
	},
	"queryDrugBatchHistory": {
		params: []string{"batchID"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.QueryDrugBatchHistory(tx, a[0])
		},
	},
	"drugBatchExists": {
		params: []string{"batchID"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.DrugBatchExists(tx, a[0])
		},
	},
	"registerProfessional": {
		params: []string{"profID", "name", "licenseType", "licenseNumber", "issueDate", "expiryDate", "issuerID", "status"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.RegisterProfessional(tx, a[0], a[1], a[2], a[3], a[4], a[5], a[6], a[7])
		},
	},
	"verifyProfessional": {
		params: []string{"profID"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.VerifyProfessional(tx, a[0])
		},
	},
	"professionalExists": {
		params: []string{"profID"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.ProfessionalExists(tx, a[0])
		},
	},
	"submitPaymentClaim": {
		params: []string{"claimID", "patientID", "serviceID", "amount", "currency", "submitterID", "status"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.SubmitPaymentClaim(tx, a[0], a[1], a[2], a[3], a[4], a[5], a[6])
		},
	},
	"updateClaimStatus": {
		params: []string{"claimID", "newStatus"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.UpdateClaimStatus(tx, a[0], a[1])
		},
	},
	"paymentClaimExists": {
		params: []string{"claimID"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.PaymentClaimExists(tx, a[0])
		},
	},
	"recordResearchConsent": {
		params: []string{"patientID", "researchProjectID", "dataTypesConsented"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.RecordResearchConsent(tx, a[0], a[1], a[2])
		},
	},
	"queryResearchConsent": {
		params: []string{"patientID", "researchProjectID"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.QueryResearchConsent(tx, a[0], a[1])
		},
	},
	"revokeResearchConsent": {
		params: []string{"patientID", "researchProjectID"},
		call: func(svc *healthcare.Service, tx ledger.Transaction, a []string) (interface{}, error) {
			return svc.RevokeResearchConsent(tx, a[0], a[1])
		},
	},
}

// Operations returns the invocable operation names in sorted order
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch invokes the named operation with positional arguments. Unknown
// names and arity mismatches fail before the ledger is touched.
func Dispatch(svc *healthcare.Service, tx ledger.Transaction, function string, args []string) (interface{}, error) {
	op, ok := operations[function]
	if !ok {
		return nil, types.NewInvalidArgumentError("unknown function %q", function)
	}
	if len(args) != len(op.params) {
		return nil, types.NewInvalidArgumentError("%s expects %d arguments %v, got %d", function, len(op.params), op.params, len(args))
	}
	return op.call(svc, tx, args)
}
