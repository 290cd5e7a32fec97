package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lucas-podkowa/library-service/internal/model"
)

func (h *Handler) CreateLoan(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req struct {
		UserID int `json:"userId" validate:"gt=0"`
		BookID int `json:"bookId" validate:"required,gt=0"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// readers omit userId and borrow for themselves
	if req.UserID == 0 {
		req.UserID = p.UserID
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	loan, err := h.librarySvc.RequestLoan(c.Request().Context(), p, model.CreateLoanRequest{
		UserID: req.UserID,
		BookID: req.BookID,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, loan)
}

func (h *Handler) ReturnLoan(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	loanID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	loan, err := h.librarySvc.ReturnLoan(c.Request().Context(), p, loanID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *Handler) CancelLoan(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	loanID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.librarySvc.CancelLoan(c.Request().Context(), p, loanID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

func (h *Handler) GetLoan(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	loanID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	loan, err := h.librarySvc.GetLoan(c.Request().Context(), p, loanID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *Handler) GetLoans(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	loans, err := h.librarySvc.ListLoans(c.Request().Context(), p)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) GetLoansByUser(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	loans, err := h.librarySvc.ListLoansByUser(c.Request().Context(), p, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) GetLoansByBook(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	bookID, err := pathID(c, "bookId")
	if err != nil {
		return err
	}
	onlyActive, _ := strconv.ParseBool(c.QueryParam("active")) //nolint:errcheck
	loans, err := h.librarySvc.ListLoansByBook(c.Request().Context(), p, bookID, onlyActive)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

func pathID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
