package healthcareledger

import (
	"context"
	"time"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"go.opentelemetry.io/otel/trace"

	"github.com/medrex/healthcare-ledger/internal/healthcare"
	"github.com/medrex/healthcare-ledger/pkg/logger"
	"github.com/medrex/healthcare-ledger/pkg/monitoring"
	"github.com/medrex/healthcare-ledger/pkg/types"
)

// ContractName is the name the contract registers under
const ContractName = "org.healthcare.HealthcareContract"

const chaincodeName = "healthcare-ledger"

// SmartContract exposes the healthcare ledger operations as Fabric
// transactions
type SmartContract struct {
	contractapi.Contract

	svc     *healthcare.Service
	log     *logger.Logger
	metrics *monitoring.MetricsCollector
	tracing *monitoring.TracingManager
}

// NewSmartContract creates the contract. metrics and tracing may be nil.
func NewSmartContract(log *logger.Logger, metrics *monitoring.MetricsCollector, tracing *monitoring.TracingManager) *SmartContract {
	if log == nil {
		log = logger.Discard()
	}
	contract := &SmartContract{
		svc:     healthcare.NewService(log),
		log:     log,
		metrics: metrics,
		tracing: tracing,
	}
	contract.Name = ContractName
	contract.Info.Title = "Healthcare ledger"
	contract.Info.Version = "1.0.0"
	return contract
}

// InitLedger is kept for lifecycle compatibility. It writes nothing.
func (s *SmartContract) InitLedger(ctx contractapi.TransactionContextInterface) error {
	s.log.WithTransaction(ctx.GetStub().GetTxID(), "InitLedger").Info("Healthcare ledger initialized")
	return nil
}

// CreatePatient registers a new patient record with no entries and no consents
func (s *SmartContract) CreatePatient(ctx contractapi.TransactionContextInterface, patientID, name, dateOfBirth string) (result *healthcare.PatientRecord, err error) {
	defer s.begin(ctx, "CreatePatient")(&err)
	return s.svc.CreatePatient(ctx.GetStub(), patientID, name, dateOfBirth)
}

// AddRecordEntry appends a clinical event to a patient record
func (s *SmartContract) AddRecordEntry(ctx contractapi.TransactionContextInterface, patientID, entryID, eventType, description, doctorID, hospitalID, timestamp string) (result *healthcare.PatientRecord, err error) {
	defer s.begin(ctx, "AddRecordEntry")(&err)
	return s.svc.AddRecordEntry(ctx.GetStub(), patientID, entryID, eventType, description, doctorID, hospitalID, timestamp)
}

// PatientExists reports whether a patient record exists
func (s *SmartContract) PatientExists(ctx contractapi.TransactionContextInterface, patientID string) (exists bool, err error) {
	defer s.begin(ctx, "PatientExists")(&err)
	return s.svc.PatientExists(ctx.GetStub(), patientID)
}

// GrantPatientAccess grants a consenter access for a purpose, replacing any
// active grant for the same pair
func (s *SmartContract) GrantPatientAccess(ctx contractapi.TransactionContextInterface, patientID, consenterID, purpose, expiresAt, grantedAt string) (result *healthcare.PatientRecord, err error) {
	defer s.begin(ctx, "GrantPatientAccess")(&err)
	return s.svc.GrantPatientAccess(ctx.GetStub(), patientID, consenterID, purpose, expiresAt, grantedAt)
}

// RevokePatientAccess deactivates the active grant for a consenter and purpose
func (s *SmartContract) RevokePatientAccess(ctx contractapi.TransactionContextInterface, patientID, consenterID, purpose string) (result *healthcare.PatientRecord, err error) {
	defer s.begin(ctx, "RevokePatientAccess")(&err)
	return s.svc.RevokePatientAccess(ctx.GetStub(), patientID, consenterID, purpose)
}

// QueryPatientRecord returns the record when the requester holds an
// unexpired consent for the purpose
func (s *SmartContract) QueryPatientRecord(ctx contractapi.TransactionContextInterface, patientID, requestingConsenterID, purpose string) (result *healthcare.PatientRecord, err error) {
	defer s.begin(ctx, "QueryPatientRecord")(&err)

	result, err = s.svc.QueryPatientRecord(ctx.GetStub(), patientID, requestingConsenterID, purpose)
	if s.metrics != nil && (err == nil || types.KindOf(err) == types.KindAccessDenied) {
		s.metrics.RecordAccessDecision(err == nil)
	}
	return result, err
}

// CreateDrugBatch registers a batch with its manufacture event
func (s *SmartContract) CreateDrugBatch(ctx contractapi.TransactionContextInterface, batchID, productName, manufacturer, manufactureDate, expiryDate string) (result *healthcare.DrugBatch, err error) {
	defer s.begin(ctx, "CreateDrugBatch")(&err)
	return s.svc.CreateDrugBatch(ctx.GetStub(), batchID, productName, manufacturer, manufactureDate, expiryDate)
}

// UpdateDrugBatchStatus appends a custody event to a batch history
func (s *SmartContract) UpdateDrugBatchStatus(ctx contractapi.TransactionContextInterface, batchID, eventID, location, status, actorID, timestamp string) (result *healthcare.DrugBatch, err error) {
	defer s.begin(ctx, "UpdateDrugBatchStatus")(&err)
	return s.svc.UpdateDrugBatchStatus(ctx.GetStub(), batchID, eventID, location, status, actorID, timestamp)
}

// QueryDrugBatchHistory returns a batch with its full history
func (s *SmartContract) QueryDrugBatchHistory(ctx contractapi.TransactionContextInterface, batchID string) (result *healthcare.DrugBatch, err error) {
	defer s.begin(ctx, "QueryDrugBatchHistory")(&err)
	return s.svc.QueryDrugBatchHistory(ctx.GetStub(), batchID)
}

// DrugBatchExists reports whether a batch exists
func (s *SmartContract) DrugBatchExists(ctx contractapi.TransactionContextInterface, batchID string) (exists bool, err error) {
	defer s.begin(ctx, "DrugBatchExists")(&err)
	return s.svc.DrugBatchExists(ctx.GetStub(), batchID)
}

// RegisterProfessional stores a professional credential
func (s *SmartContract) RegisterProfessional(ctx contractapi.TransactionContextInterface, profID, name, licenseType, licenseNumber, issueDate, expiryDate, issuerID, status string) (result *healthcare.ProfessionalCredential, err error) {
	defer s.begin(ctx, "RegisterProfessional")(&err)
	return s.svc.RegisterProfessional(ctx.GetStub(), profID, name, licenseType, licenseNumber, issueDate, expiryDate, issuerID, status)
}

// VerifyProfessional returns a stored credential
func (s *SmartContract) VerifyProfessional(ctx contractapi.TransactionContextInterface, profID string) (result *healthcare.ProfessionalCredential, err error) {
	defer s.begin(ctx, "VerifyProfessional")(&err)
	return s.svc.VerifyProfessional(ctx.GetStub(), profID)
}

// ProfessionalExists reports whether a credential exists
func (s *SmartContract) ProfessionalExists(ctx contractapi.TransactionContextInterface, profID string) (exists bool, err error) {
	defer s.begin(ctx, "ProfessionalExists")(&err)
	return s.svc.ProfessionalExists(ctx.GetStub(), profID)
}

// SubmitPaymentClaim records a payment claim dated at the transaction time
func (s *SmartContract) SubmitPaymentClaim(ctx contractapi.TransactionContextInterface, claimID, patientID, serviceID, amount, currency, submitterID, status string) (result *healthcare.PaymentClaim, err error) {
	defer s.begin(ctx, "SubmitPaymentClaim")(&err)
	return s.svc.SubmitPaymentClaim(ctx.GetStub(), claimID, patientID, serviceID, amount, currency, submitterID, status)
}

// UpdateClaimStatus sets the status of a claim
func (s *SmartContract) UpdateClaimStatus(ctx contractapi.TransactionContextInterface, claimID, newStatus string) (result *healthcare.PaymentClaim, err error) {
	defer s.begin(ctx, "UpdateClaimStatus")(&err)
	return s.svc.UpdateClaimStatus(ctx.GetStub(), claimID, newStatus)
}

// PaymentClaimExists reports whether a claim exists
func (s *SmartContract) PaymentClaimExists(ctx contractapi.TransactionContextInterface, claimID string) (exists bool, err error) {
	defer s.begin(ctx, "PaymentClaimExists")(&err)
	return s.svc.PaymentClaimExists(ctx.GetStub(), claimID)
}

// RecordResearchConsent records a patient's consent to a research project
func (s *SmartContract) RecordResearchConsent(ctx contractapi.TransactionContextInterface, patientID, researchProjectID, dataTypesConsented string) (result *healthcare.ResearchConsent, err error) {
	defer s.begin(ctx, "RecordResearchConsent")(&err)
	return s.svc.RecordResearchConsent(ctx.GetStub(), patientID, researchProjectID, dataTypesConsented)
}

// QueryResearchConsent returns the research consent for a patient and project
func (s *SmartContract) QueryResearchConsent(ctx contractapi.TransactionContextInterface, patientID, researchProjectID string) (result *healthcare.ResearchConsent, err error) {
	defer s.begin(ctx, "QueryResearchConsent")(&err)
	return s.svc.QueryResearchConsent(ctx.GetStub(), patientID, researchProjectID)
}

// RevokeResearchConsent withdraws an active research consent
func (s *SmartContract) RevokeResearchConsent(ctx contractapi.TransactionContextInterface, patientID, researchProjectID string) (result *healthcare.ResearchConsent, err error) {
	defer s.begin(ctx, "RevokeResearchConsent")(&err)
	return s.svc.RevokeResearchConsent(ctx.GetStub(), patientID, researchProjectID)
}

// begin opens the observation of one transaction. The returned function
// takes the address of the named error result so the deferred call sees
// the final outcome.
func (s *SmartContract) begin(ctx contractapi.TransactionContextInterface, function string) func(*error) {
	start := time.Now()
	txID := ctx.GetStub().GetTxID()

	var span trace.Span
	if s.tracing != nil {
		_, span = s.tracing.StartTransactionSpan(context.Background(), chaincodeName, function, txID)
	}

	return func(err *error) {
		elapsed := time.Since(start)

		code := ""
		if *err != nil {
			code = types.CodeOf(*err)
		}
		if s.metrics != nil {
			s.metrics.RecordTransaction(function, code, elapsed)
		}
		if span != nil {
			s.tracing.EndSpan(span, *err)
		}

		s.log.BlockchainTransaction(chaincodeName, function, txID, callerID(ctx), elapsed.Milliseconds(), *err)
	}
}

// callerID reads the invoker from the creator certificate. Identities that
// are not X.509 yield an empty ID.
func callerID(ctx contractapi.TransactionContextInterface) string {
	id, err := cid.GetID(ctx.GetStub())
	if err != nil {
		return ""
	}
	return id
}
