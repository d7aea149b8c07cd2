package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetInvoice(c *gin.Context) {
	invoiceID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	invoice, err := s.invoiceSvc.Retrieve(c.Request.Context(), hotelID(c), invoiceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, invoice)
}

func (s *Server) GetInvoiceArtifactURL(c *gin.Context) {
	invoiceID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	url, err := s.invoiceSvc.ArtifactURL(c.Request.Context(), hotelID(c), invoiceID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"url": url})
}
