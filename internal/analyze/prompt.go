// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/layoutmd/pkg/types"
)

// DefaultInstruction is the trade-finance document analysis prompt. It asks
// for a JSON object whose validation block the pipeline understands.
const DefaultInstruction = `You are an expert trade-finance and logistics document analyst.

Analyse the trade/logistics/banking document provided and return ONLY a JSON object
matching the schema below. No prose, no markdown fences.

DOCUMENT TYPES (identify best match):
EXPORT-Commercial: Commercial Invoice, Proforma Invoice, Packing List, Certificate of Origin, Insurance Certificate
EXPORT-Shipping: Bill of Lading, Air Waybill, Shipping Bill, Mate's Receipt, Transport Invoice
EXPORT-Customs: Export License, ARE-1/LUT, Inspection/Phytosanitary/Fumigation Certificate, Dangerous Goods Declaration
EXPORT-Banking: Letter of Credit, Bill of Exchange, Bank Realization Certificate
IMPORT-Commercial: Commercial Invoice, Packing List, Bill of Entry, Delivery Order
IMPORT-Shipping: Bill of Lading, Air Waybill, Arrival Notice, Container Release Order
IMPORT-Customs: Import License, HS Code Declaration, Duty Payment Challan, GST Invoice, Test Report
IMPORT-Banking: Letter of Credit Documents Set, Remittance Advice
COMMON: Commercial Invoice, Packing List, Insurance Certificate, Transport Documents
OTHER: any document not listed above

RULES:
- null for absent fields; never omit schema keys
- Mark inferred values "inferred" in all_extracted_fields
- Flag every anomaly (missing mandatory fields, date conflicts, HS code format, amount mismatches, missing signatures)
- Dates as YYYY-MM-DD

OUTPUT SCHEMA:
{
  "document_type": "",
  "document_category": "EXPORT|IMPORT|COMMON|OTHER",
  "document_sub_category": "",
  "confidence": 0.0,
  "parties": {
    "exporter": null, "importer": null, "consignee": null,
    "notify_party": null, "bank": null, "carrier": null, "issuing_authority": null
  },
  "reference_numbers": {
    "invoice_no": null, "bl_no": null, "awb_no": null, "lc_no": null,
    "shipping_bill_no": null, "be_no": null, "iec_code": null,
    "po_no": null, "container_no": null, "hs_code": null, "other": {}
  },
  "dates": {
    "document_date": null, "shipment_date": null,
    "eta": null, "expiry_date": null, "other": {}
  },
  "route": {
    "port_of_loading": null, "port_of_discharge": null,
    "place_of_delivery": null, "vessel_flight": null, "incoterms": null
  },
  "goods": [{
    "line_no": 0, "description": "", "hs_code": null,
    "quantity": "", "unit_price": "", "total_price": "",
    "gross_weight": null, "net_weight": null, "marks_numbers": null
  }],
  "financials": {
    "currency": null, "subtotal": null, "freight": null, "insurance": null,
    "other_charges": null, "total_duty": null, "gst_igst": null,
    "grand_total": null, "payment_terms": null, "incoterm_value": null
  },
  "all_extracted_fields": [{
    "field": "", "value": null, "raw": "", "status": "present|missing|inferred"
  }],
  "validation": {
    "overall_status": "VALID|WARNINGS|ERRORS",
    "flags": [{"severity": "ERROR|WARNING|INFO", "field": "", "issue": "", "recommendation": ""}]
  },
  "summary": ""
}`

// systemPromptTmpl appends the JSON-only reply rule to an instruction.
var systemPromptTmpl = template.Must(template.New("system").Parse(`{{.Instruction}}

Respond with a single JSON object and nothing else. Do not wrap it in code fences.`))

func renderSystemPrompt(instruction string) (string, error) {
	var buf bytes.Buffer
	if err := systemPromptTmpl.Execute(&buf, struct{ Instruction string }{Instruction: instruction}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// LoadPrompt reads an instruction prompt from path. Files ending in .yaml or
// .yml hold a types.Prompt; anything else is the instruction text itself,
// named after the file.
func LoadPrompt(path string) (types.Prompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Prompt{}, fmt.Errorf("reading prompt file: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var p types.Prompt
		if err := yaml.Unmarshal(data, &p); err != nil {
			return types.Prompt{}, fmt.Errorf("parsing prompt file %s: %w", path, err)
		}
		p.Instruction = strings.TrimSpace(p.Instruction)
		if p.Instruction == "" {
			return types.Prompt{}, fmt.Errorf("prompt file %s has no instruction", path)
		}
		if p.Name == "" {
			p.Name = name
		}
		return p, nil
	default:
		text := strings.TrimSpace(string(data))
		if text == "" {
			return types.Prompt{}, fmt.Errorf("prompt file %s is empty", path)
		}
		return types.Prompt{Name: name, Instruction: text}, nil
	}
}
