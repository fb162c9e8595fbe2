package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/lastbite/lastbite/internal/upload"
)

// UploadHandler accepts listing images from sellers and returns the
// public URL to store on the listing.
type UploadHandler struct {
    Store *upload.Store
}

func NewUploadHandler(s *upload.Store) *UploadHandler {
    return &UploadHandler{Store: s}
}

// Image reads the multipart "image" field and saves it.
func (h *UploadHandler) Image(c echo.Context) error {
    fh, err := c.FormFile("image")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file required"})
    }
    src, err := fh.Open()
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read upload"})
    }
    defer src.Close()

    url, err := h.Store.Save(fh.Filename, src)
    if err != nil {
        if errors.Is(err, upload.ErrUnsupportedType) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported file type"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"url": url})
}
