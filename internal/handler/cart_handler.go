package handler

import (
	"net/http"
	"strconv"

	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

const sessionCookieName = "cart_session"

// /cartのHTTP。セッション→カートIDの解決はここだけで行い、
// usecaseには解決済みのカートIDを渡す。
type CartHandler struct {
	uc       *usecase.CartUsecase
	sessions repo.SessionStore
}

// DI
func NewCartHandler(uc *usecase.CartUsecase, sessions repo.SessionStore) *CartHandler {
	return &CartHandler{uc: uc, sessions: sessions}
}

type AddCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// /cart系のルートを登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/cart", h.getCart)
	e.POST("/cart", h.createCart)
	e.POST("/cart/add_item", h.addItem)
	e.DELETE("/cart/:product_id", h.removeItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	_, cartID, err := h.resolveCartID(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	if cartID == 0 {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "cart not found"})
	}

	out, err := h.uc.GetCart(c.Request().Context(), cartID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) createCart(c echo.Context) error {
	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	sid, cartID, err := h.resolveCartID(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	out, err := h.uc.CreateCart(c.Request().Context(), cartID, usecase.CreateCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	//セッションとカートを結びつける（セッションが無ければ発行）
	if sid == "" {
		sid = uuid.NewString()
		h.setSessionCookie(c, sid)
	}
	if err := h.sessions.Set(c.Request().Context(), sid, out.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	_, cartID, err := h.resolveCartID(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	if cartID == 0 {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "cart not found"})
	}

	out, err := h.uc.AddItem(c.Request().Context(), cartID, usecase.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	sid, cartID, err := h.resolveCartID(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	if cartID == 0 {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "cart not found"})
	}

	out, removed, err := h.uc.RemoveItem(c.Request().Context(), cartID, productID)
	if err != nil {
		return writeError(c, err)
	}

	//空になってカートごと消えたらセッションの結びつけも外す
	if removed {
		if err := h.sessions.Clear(c.Request().Context(), sid); err != nil {
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
		return c.JSON(http.StatusOK, MessageResponse{Message: "cart removed"})
	}

	return c.JSON(http.StatusOK, out)
}

// セッションIDとそれが指すカートIDを引く。未結付けは0を返す
func (h *CartHandler) resolveCartID(c echo.Context) (string, int64, error) {
	ck, err := c.Cookie(sessionCookieName)
	if err != nil || ck.Value == "" {
		return "", 0, nil
	}

	cartID, err := h.sessions.Get(c.Request().Context(), ck.Value)
	if err == repo.ErrNotFound {
		return ck.Value, 0, nil
	}
	if err != nil {
		return ck.Value, 0, err
	}

	return ck.Value, cartID, nil
}

func (h *CartHandler) setSessionCookie(c echo.Context, sid string) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
