package importcsv

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/http/respond"
	"github.com/MrJamesThe3rd/getrich/internal/importer"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

const maxUpload = 10 << 20

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
}

type transactionResponse struct {
	ID          uuid.UUID        `json:"id"`
	Type        transaction.Type `json:"type"`
	Category    string           `json:"category"`
	Amount      decimal.Decimal  `json:"amount"`
	Date        string           `json:"date"`
	Description string           `json:"description"`
}

type importSuccessResponse struct {
	Imported     int                   `json:"imported"`
	Transactions []transactionResponse `json:"transactions"`
}

type createParamsDTO struct {
	Type        transaction.Type `json:"type" validate:"required,oneof=Income Expense"`
	Category    string           `json:"category"`
	Amount      decimal.Decimal  `json:"amount"`
	Date        string           `json:"date" validate:"required,datetime=2006-01-02"`
	ProjectID   *uuid.UUID       `json:"project_id,omitempty"`
	Description string           `json:"description"`
}

type conflictDTO struct {
	Incoming createParamsDTO     `json:"incoming"`
	Existing transactionResponse `json:"existing"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params" validate:"required,min=1,dive"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respond.Error(w, fmt.Errorf("%w: parsing form: %v", respond.ErrInvalid, err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, fmt.Errorf("%w: file field is required", respond.ErrInvalid))
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(r.Context(), importer.Source(r.FormValue("source")), file)
	if err != nil {
		respond.Error(w, fmt.Errorf("%w: %v", respond.ErrInvalid, err))
		return
	}

	result, err := h.txSvc.ImportBatch(r.Context(), params)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toTxResponse(c.Existing),
			})
		}

		respond.JSON(w, http.StatusConflict, resp)

		return
	}

	respond.JSON(w, http.StatusCreated, toSuccessResponse(result.Imported))
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	params := make([]transaction.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		date, _ := time.Parse(time.DateOnly, p.Date)

		category := p.Category
		if !transaction.IsCategory(category) {
			category = transaction.CategoryOther
		}

		params = append(params, transaction.CreateParams{
			Type:        p.Type,
			Category:    category,
			Amount:      p.Amount,
			Date:        date,
			ProjectID:   p.ProjectID,
			Description: p.Description,
		})
	}

	txs, err := h.txSvc.CreateBatch(r.Context(), params)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toSuccessResponse(txs))
}

func toSuccessResponse(txs []*transaction.Transaction) importSuccessResponse {
	responses := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, toTxResponse(tx))
	}

	return importSuccessResponse{
		Imported:     len(txs),
		Transactions: responses,
	}
}

func toTxResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Type:        tx.Type,
		Category:    tx.Category,
		Amount:      tx.Amount,
		Date:        tx.Date.Format(time.DateOnly),
		Description: tx.Description,
	}
}

func toParamsDTO(p transaction.CreateParams) createParamsDTO {
	return createParamsDTO{
		Type:        p.Type,
		Category:    p.Category,
		Amount:      p.Amount,
		Date:        p.Date.Format(time.DateOnly),
		ProjectID:   p.ProjectID,
		Description: p.Description,
	}
}
