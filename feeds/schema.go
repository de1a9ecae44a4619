// Package feeds normalizes the vendor data feeds into the fixed warehouse
// schemas. Each feed has its own pipeline because the vendors export
// incompatible layouts: the rx detail feed is a CSV whose column order is
// contractual, while the BI summary feed is a spreadsheet keyed by header name.
package feeds

import (
	"fmt"
	"strings"

	"github.com/theranica/rxpipe/constants"
)

// FeedType identifies which normalization pipeline handles a file.
type FeedType int

const (
	FeedUnknown FeedType = iota
	FeedRxProcare
	FeedBiSummary
)

func (f FeedType) String() string {
	switch f {
	case FeedRxProcare:
		return "rx_procare"
	case FeedBiSummary:
		return "bi_summary"
	default:
		return "unknown"
	}
}

// DetectFeed routes a file to its pipeline by filename token, case-insensitively.
func DetectFeed(filename string) FeedType {
	upper := strings.ToUpper(filename)
	if strings.Contains(upper, constants.FeedTokenProcare) {
		return FeedRxProcare
	}
	if strings.Contains(upper, constants.FeedTokenBiSummary) {
		return FeedBiSummary
	}
	return FeedUnknown
}

// SchemaError reports input that cannot be projected onto a feed's fixed schema.
type SchemaError struct {
	Feed FeedType
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("feed %v schema mismatch: %v", e.Feed, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// SchemaRxProcare is the warehouse layout for the rx detail feed. The source
// file carries the first 34 columns in exactly this order; modified_serial_id
// and the snapshot date are derived during normalization.
var SchemaRxProcare = []string{
	"De_identified_Patient_ID", "Rx_Number", "Received_Date", "Dispense_Date", "Serial__", "Total_Fills",
	"Fills_Dispensed", "Fill_Remaining", "Provider_Last_Name", "Provider_First_Name", "Provider_Address",
	"Provider_City", "Provider_State__", "Provider_Zip_Code", "Provider_NPI", "Region", "Script_Status", "Patient_OOP",
	"Payor_Name", "Plan_Name", "Copay", "Source", "Fill_Type_Recieved", "Fill_Type_Shipped", "Date_Written",
	"CLOSED_STATUS", "Insurance_Type", "PA_STATUS", "Order_PA_Status", "REMINDERSTATUS_PAT", "Plan_Name_Claim", "AGE",
	"NDC", "USAGE", "modified_serial_id", constants.SnapshotColumnName,
}

// SchemaBiSummary is the warehouse layout for the BI summary feed. Input
// headers are normalized and renamed, then projected onto this set; any
// missing column is a SchemaError.
var SchemaBiSummary = []string{
	"PATID", "RX_NUM", "DATE_ENTERED", "WE_DATE_ENTERED_MED_BI", "STATUS_ID", "SUBCATEGORY_MED_BI",
	"MEDBISTATUS", "INS_PLN", "MEDICAL_PLN_NAME", "RX_REJ_CODE", "RX_BIN", "RX_PCN", "RX_PBM", "DR_NPI",
	"DR_NAME", "DR_ADD", "DR_ST", "DR_ZIP", "DATE_PA_FAXED_MED_BI", "PRECERTIFICATION", "DATE_CLM_SUBMT_MED_BI",
	"MED_BILLING_STATUS", "SCA__APPROVED_DATE", "SCA_STATUS_MED_BI", "MIDAS_CODE_BI", "SUPPORT_DOCS_MD_MED_BI",
	"ICD_10_MED_BI", "TRIED_FAILED_BI", "SERIAL_NUMBER", "ACUTE_PREVENTION", "DATEWRITTEN", "DATE_RESP_LTR_RECD_BI",
	"DATE_CLINCL_DOC_REQ", "APPL_STATUS_MED_BI", "DATE_APPL_FAXED_HCP_MED_BI", "DATE_APPL_FAXED_INS_MED_BI",
	"DATE_APPL_DENIED_MED_BI", "CLAIM_REJECT", "MED_CLAIM_PAYMENT", "MED_APPLIED_DEDUCTIBLE", "MED_PAT_COPAY_CO_INS",
}
