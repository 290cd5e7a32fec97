package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lucas-podkowa/library-service/internal/model"
)

func (h *Handler) GetBooks(c echo.Context) error {
	books, err := h.librarySvc.ListBooks(c.Request().Context(), false)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetAvailableBooks(c echo.Context) error {
	books, err := h.librarySvc.ListBooks(c.Request().Context(), true)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	book, err := h.librarySvc.GetBook(c.Request().Context(), bookID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) CreateBook(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	book, err := h.librarySvc.CreateBook(c.Request().Context(), p, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	book, err := h.librarySvc.UpdateBook(c.Request().Context(), p, bookID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.librarySvc.DeleteBook(c.Request().Context(), p, bookID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

func (h *Handler) UpdateStock(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req model.UpdateStockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if (req.Delta == nil) == (req.Stock == nil) {
		return echo.NewHTTPError(http.StatusBadRequest, "exactly one of delta or stock is required")
	}
	book, err := h.librarySvc.UpdateStock(c.Request().Context(), p, bookID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}
