package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListContacts handles GET /api/appliances/:id/contacts.
func (h *Handler) ListContacts(c *gin.Context) {
	contacts, err := h.contacts.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// CreateContact handles POST /api/appliances/:id/contacts.
func (h *Handler) CreateContact(c *gin.Context) {
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	contact, err := h.contacts.Create(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// UpdateContact handles PUT /api/contacts/:contactId.
func (h *Handler) UpdateContact(c *gin.Context) {
	var req updateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	contact, err := h.contacts.Update(c.Request.Context(), c.Param("contactId"), req.update())
	if err != nil {
		respondError(c, "Support contact", err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// DeleteContact handles DELETE /api/contacts/:contactId.
func (h *Handler) DeleteContact(c *gin.Context) {
	existed, err := h.contacts.Delete(c.Request.Context(), c.Param("contactId"))
	if err != nil {
		respondError(c, "Support contact", err)
		return
	}
	if !existed {
		notFound(c, "Support contact")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListDocuments handles GET /api/appliances/:id/documents.
func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// CreateDocument handles POST /api/appliances/:id/documents.
func (h *Handler) CreateDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	doc, err := h.documents.Create(c.Request.Context(), c.Param("id"), req.Title, req.URL)
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// UpdateDocument handles PUT /api/documents/:documentId.
func (h *Handler) UpdateDocument(c *gin.Context) {
	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	doc, err := h.documents.Update(c.Request.Context(), c.Param("documentId"), req.update())
	if err != nil {
		respondError(c, "Linked document", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/documents/:documentId.
func (h *Handler) DeleteDocument(c *gin.Context) {
	existed, err := h.documents.Delete(c.Request.Context(), c.Param("documentId"))
	if err != nil {
		respondError(c, "Linked document", err)
		return
	}
	if !existed {
		notFound(c, "Linked document")
		return
	}
	c.Status(http.StatusNoContent)
}
