package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dentalboard-backend/internal/csvimport"
	"dentalboard-backend/internal/finance"
	"dentalboard-backend/internal/models"
	"dentalboard-backend/internal/printorder"
	"dentalboard-backend/internal/respond"
	"dentalboard-backend/internal/storage"
)

// ListActivePriceItems returns the orderable price table
// @Summary List price table
// @Tags print-orders
// @Produce json
// @Success 200 {object} map[string][]models.PriceItem
// @Security BearerAuth
// @Router /price-table [get]
func (h *Handler) ListActivePriceItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListPriceItems(r.Context(), true)
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.Items(w, items)
}

// EstimatePrintOrder quotes a price item
// @Summary Estimate print order
// @Tags print-orders
// @Produce json
// @Param price_item_id query string true "Price item ID"
// @Param design query bool false "Design requested"
// @Success 200 {object} models.Estimate
// @Failure 404 {object} map[string]interface{} "Unknown or inactive item"
// @Security BearerAuth
// @Router /print-orders/estimate [get]
func (h *Handler) EstimatePrintOrder(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("price_item_id")
	if id == "" {
		respond.Error(w, http.StatusBadRequest, "price_item_id is required")
		return
	}
	design, _ := strconv.ParseBool(r.URL.Query().Get("design"))

	item, err := h.store.GetPriceItem(r.Context(), id)
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	if !item.Active {
		respond.Error(w, http.StatusNotFound, printorder.ErrInactiveItem.Error())
		return
	}
	respond.OK(w, printorder.Estimate(*item, design, h.now().In(h.loc)))
}

// CreatePrintOrder places an order for the caller's clinic
// @Summary Create print order
// @Tags print-orders
// @Accept json
// @Produce json
// @Param body body models.CreatePrintOrderInput true "Order"
// @Success 201 {object} models.PrintOrder
// @Failure 422 {object} map[string]interface{} "Unknown or inactive item"
// @Security BearerAuth
// @Router /print-orders [post]
func (h *Handler) CreatePrintOrder(w http.ResponseWriter, r *http.Request) {
	var in models.CreatePrintOrderInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.PriceItemID == "" {
		validationError(w, []string{"商品を選択してください"})
		return
	}
	item, err := h.store.GetPriceItem(r.Context(), in.PriceItemID)
	if errors.Is(err, storage.ErrNotFound) {
		validationError(w, []string{"選択された商品が見つかりません"})
		return
	}
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}

	in.Notes = h.sanitize(in.Notes)
	p := principal(r)
	order, err := printorder.NewOrder(*item, in, clinicID(r), p.UserID, h.now().In(h.loc))
	if err != nil {
		validationError(w, []string{err.Error()})
		return
	}
	if err := h.store.CreatePrintOrder(r.Context(), &order); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}

	h.publish(r, models.Event{
		Kind:     models.EventPrintOrderCreated,
		ClinicID: order.ClinicID,
		Subject:  order.ID,
		Attrs: map[string]string{
			"order_id":           order.ID,
			"product_type":       order.ProductType,
			"quantity":           strconv.Itoa(order.Quantity),
			"total":              finance.FormatYen(order.Total),
			"estimated_delivery": order.EstimatedDelivery.Format("2006-01-02"),
		},
	})
	respond.JSON(w, http.StatusCreated, order)
}

// ListPrintOrders lists the clinic's orders
// @Summary List print orders
// @Tags print-orders
// @Produce json
// @Param status query string false "Status filter"
// @Success 200 {object} map[string][]models.PrintOrder
// @Security BearerAuth
// @Router /print-orders [get]
func (h *Handler) ListPrintOrders(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !printorder.ValidStatus(status) {
		respond.Error(w, http.StatusBadRequest, printorder.ErrUnknownStatus.Error())
		return
	}
	items, err := h.store.ListPrintOrders(r.Context(), clinicID(r), status)
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.Items(w, items)
}

// GetPrintOrder returns one of the clinic's orders
// @Summary Get print order
// @Tags print-orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.PrintOrder
// @Failure 404 {object} map[string]interface{} "Not found"
// @Security BearerAuth
// @Router /print-orders/{id} [get]
func (h *Handler) GetPrintOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.store.GetPrintOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	if order.ClinicID != clinicID(r) {
		respond.Error(w, http.StatusNotFound, "not found")
		return
	}
	respond.OK(w, order)
}

// CancelPrintOrder cancels a pending order of the caller's clinic
// @Summary Cancel print order
// @Tags print-orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.PrintOrder
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 409 {object} map[string]interface{} "Order is no longer pending"
// @Security BearerAuth
// @Router /print-orders/{id}/cancel [post]
func (h *Handler) CancelPrintOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.store.GetPrintOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	clinic := clinicID(r)
	if order.ClinicID != clinic {
		respond.Error(w, http.StatusNotFound, "not found")
		return
	}
	if err := printorder.CanClinicCancel(*order, clinic); err != nil {
		respond.Error(w, http.StatusConflict, "受付前の注文のみキャンセルできます")
		return
	}
	h.moveOrder(w, r, order, models.OrderCancelled)
}

// ListAllPrintOrders lists orders across clinics
// @Summary List all print orders
// @Tags admin
// @Produce json
// @Param status query string false "Status filter"
// @Param clinic_id query string false "Clinic filter"
// @Success 200 {object} map[string][]models.PrintOrder
// @Security BearerAuth
// @Router /admin/print-orders [get]
func (h *Handler) ListAllPrintOrders(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !printorder.ValidStatus(status) {
		respond.Error(w, http.StatusBadRequest, printorder.ErrUnknownStatus.Error())
		return
	}
	items, err := h.store.ListPrintOrders(r.Context(), r.URL.Query().Get("clinic_id"), status)
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.Items(w, items)
}

type orderStatusInput struct {
	Status string `json:"status"`
}

// UpdatePrintOrderStatus advances an order through the workflow
// @Summary Update print order status
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body orderStatusInput true "Next status"
// @Success 200 {object} models.PrintOrder
// @Failure 400 {object} map[string]interface{} "Unknown status"
// @Failure 409 {object} map[string]interface{} "Transition not allowed"
// @Security BearerAuth
// @Router /admin/print-orders/{id}/status [post]
func (h *Handler) UpdatePrintOrderStatus(w http.ResponseWriter, r *http.Request) {
	var in orderStatusInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if !printorder.ValidStatus(in.Status) {
		respond.Error(w, http.StatusBadRequest, printorder.ErrUnknownStatus.Error())
		return
	}
	order, err := h.store.GetPrintOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	if err := printorder.CanTransition(order.Status, in.Status); err != nil {
		respond.Error(w, http.StatusConflict, err.Error())
		return
	}
	h.moveOrder(w, r, order, in.Status)
}

// moveOrder applies a checked transition and announces it.
func (h *Handler) moveOrder(w http.ResponseWriter, r *http.Request, order *models.PrintOrder, to string) {
	updated, err := h.store.UpdatePrintOrderStatus(r.Context(), order.ID, order.Status, to)
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	h.publish(r, models.Event{
		Kind:     models.EventPrintOrderStatus,
		ClinicID: updated.ClinicID,
		Subject:  updated.ID,
		Attrs: map[string]string{
			"order_id":     updated.ID,
			"product_type": updated.ProductType,
			"from":         order.Status,
			"status":       updated.Status,
		},
	})
	respond.OK(w, updated)
}

// ListAllPriceItems lists the whole price table including inactive items
// @Summary List all price items
// @Tags admin
// @Produce json
// @Success 200 {object} map[string][]models.PriceItem
// @Security BearerAuth
// @Router /admin/price-table [get]
func (h *Handler) ListAllPriceItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListPriceItems(r.Context(), false)
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.Items(w, items)
}

func (h *Handler) priceItemFromInput(in models.PriceItemInput) (models.PriceItem, []string) {
	item := models.PriceItem{
		ProductType:       h.sanitize(in.ProductType),
		Quantity:          in.Quantity,
		Price:             in.Price,
		DesignFee:         in.DesignFee,
		DesignFeeIncluded: in.DesignFeeIncluded,
		Specifications:    in.Specifications,
		DeliveryDays:      in.DeliveryDays,
		Active:            in.Active == nil || *in.Active,
	}
	var problems []string
	if item.ProductType == "" {
		problems = append(problems, "商品種類が空です")
	}
	if item.Quantity <= 0 {
		problems = append(problems, "数量は1以上で入力してください")
	}
	if item.Price < 0 || item.DesignFee < 0 {
		problems = append(problems, "価格とデザイン料は0以上で入力してください")
	}
	if item.DeliveryDays < 0 {
		problems = append(problems, "納期日数は0以上で入力してください")
	}
	return item, problems
}

// CreatePriceItem adds a price table row
// @Summary Create price item
// @Tags admin
// @Accept json
// @Produce json
// @Param body body models.PriceItemInput true "Price item"
// @Success 201 {object} models.PriceItem
// @Failure 422 {object} map[string]interface{} "Validation errors"
// @Security BearerAuth
// @Router /admin/price-table [post]
func (h *Handler) CreatePriceItem(w http.ResponseWriter, r *http.Request) {
	var in models.PriceItemInput
	if !decodeJSON(w, r, &in) {
		return
	}
	item, problems := h.priceItemFromInput(in)
	if len(problems) > 0 {
		validationError(w, problems)
		return
	}
	if err := h.store.CreatePriceItem(r.Context(), &item); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, item)
}

// UpdatePriceItem replaces a price table row
// @Summary Update price item
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Price item ID"
// @Param body body models.PriceItemInput true "Price item"
// @Success 200 {object} models.PriceItem
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 422 {object} map[string]interface{} "Validation errors"
// @Security BearerAuth
// @Router /admin/price-table/{id} [put]
func (h *Handler) UpdatePriceItem(w http.ResponseWriter, r *http.Request) {
	var in models.PriceItemInput
	if !decodeJSON(w, r, &in) {
		return
	}
	item, problems := h.priceItemFromInput(in)
	if len(problems) > 0 {
		validationError(w, problems)
		return
	}
	item.ID = chi.URLParam(r, "id")
	if err := h.store.UpdatePriceItem(r.Context(), &item); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	updated, err := h.store.GetPriceItem(r.Context(), item.ID)
	if err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	respond.OK(w, updated)
}

// DeletePriceItem removes a price table row, or deactivates it while orders reference it
// @Summary Delete price item
// @Tags admin
// @Param id path string true "Price item ID"
// @Success 204
// @Failure 404 {object} map[string]interface{} "Not found"
// @Security BearerAuth
// @Router /admin/price-table/{id} [delete]
func (h *Handler) DeletePriceItem(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeletePriceItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpErrorFromStorage(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportPriceTable bulk-inserts price items from a CSV or XLSX upload
// @Summary Import price table
// @Description Valid rows are inserted in one transaction; invalid rows are reported with their 1-based data row index
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV (UTF-8 or Shift_JIS) or XLSX"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} map[string]interface{} "Unreadable file or missing columns"
// @Security BearerAuth
// @Router /admin/price-table/import-csv [post]
func (h *Handler) ImportPriceTable(w http.ResponseWriter, r *http.Request) {
	outcome, ok := h.readUpload(w, r, csvimport.PriceTable)
	if !ok {
		return
	}
	result := models.ImportResult{Failed: len(outcome.Invalid), Errors: outcome.Messages()}

	all := csvimport.PriceItems(outcome.Valid)
	items := all[:0]
	for i, item := range all {
		item.ProductType = h.sanitize(item.ProductType)
		if item.ProductType == "" {
			result.Failed++
			result.Errors = append(result.Errors, csvimport.RowError{Index: outcome.Valid[i].Index, Reason: "商品種類が空です"}.Error())
			continue
		}
		items = append(items, item)
	}
	if len(items) > 0 {
		if err := h.store.BulkInsertPriceItems(r.Context(), items); err != nil {
			slog.Error("price table import failed", "rows", len(items), "error", err)
			result.Failed += len(items)
			result.Errors = append(result.Errors, "データベースへの登録に失敗しました")
		} else {
			result.Success = len(items)
		}
	}
	respond.OK(w, result)
}
