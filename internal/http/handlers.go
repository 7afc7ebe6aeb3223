package http

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/quantumauth-io/contract-loader/internal/chains"
	"github.com/quantumauth-io/contract-loader/internal/loader"
	"github.com/quantumauth-io/contract-loader/internal/networks"
	"github.com/quantumauth-io/contract-loader/internal/registry"
)

// RegistryReader and TargetReader expose a write counter next to the snapshot
// so clients can poll for changes.
type RegistryReader interface {
	Snapshot() registry.ContractRegistry
	Version() uint64
}

type TargetReader interface {
	Snapshot() []chains.NetworkOption
	Version() uint64
}

type Handler struct {
	form      *loader.Form
	catalog   chains.Catalog
	contracts RegistryReader
	targets   TargetReader
}

func NewHandler(form *loader.Form, catalog chains.Catalog, contracts RegistryReader, targets TargetReader) *Handler {
	return &Handler{
		form:      form,
		catalog:   catalog,
		contracts: contracts,
		targets:   targets,
	}
}

// -------- DTOs --------

// Name is a pointer so a cleared selection (null) can be told apart from "".
// ChainIDHex selects by chain id instead, as a wallet reports it.
type selectNetworkReq struct {
	Name       *string `json:"name"`
	ChainIDHex *string `json:"chainIdHex"`
}

type changeAddressReq struct {
	Address *string `json:"address" binding:"required"`
}

type changeAbiReq struct {
	ABI *string `json:"abi" binding:"required"`
}

type loadRejectedRes struct {
	Reason loader.Reason `json:"reason"`
	Flags  loader.Flags  `json:"flags"`
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, HealthOKText)
}

// GET /api/networks
func (h *Handler) Networks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		JSONKeyNetworks:      h.catalog.Options(),
		JSONKeyActiveNetwork: h.form.Status().ActiveNetwork,
	})
}

// GET /api/target-networks
func (h *Handler) TargetNetworks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		JSONKeyNetworks: h.targets.Snapshot(),
		JSONKeyVersion:  h.targets.Version(),
	})
}

// GET /api/contracts
func (h *Handler) Contracts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		JSONKeyContracts: h.contracts.Snapshot(),
		JSONKeyVersion:   h.contracts.Version(),
	})
}

// GET /api/form
func (h *Handler) FormStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.form.Status())
}

// POST /api/form/network
func (h *Handler) SelectNetwork(c *gin.Context) {
	var req selectNetworkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorInvalidJSONText})
		return
	}

	if req.Name != nil && req.ChainIDHex != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorNameAndChainIDText})
		return
	}

	var opt *chains.NetworkOption
	switch {
	case req.Name != nil:
		if resolved, ok := h.catalog.Lookup(*req.Name); ok {
			opt = &resolved
		} else {
			opt = &chains.NetworkOption{Name: *req.Name}
		}
	case req.ChainIDHex != nil:
		if resolved, ok := h.catalog.LookupByChainIDHex(*req.ChainIDHex); ok {
			opt = &resolved
		} else {
			opt = &chains.NetworkOption{Name: *req.ChainIDHex, ChainIDHex: *req.ChainIDHex}
		}
	}

	if err := h.form.SelectNetwork(opt); err != nil {
		if errors.Is(err, networks.ErrUnknownNetwork) {
			c.JSON(http.StatusOK, gin.H{
				JSONKeyNotAdded: true,
				JSONKeyStatus:   h.form.Status(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{JSONKeyError: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{JSONKeyStatus: h.form.Status()})
}

// POST /api/form/address
func (h *Handler) ChangeAddress(c *gin.Context) {
	var req changeAddressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: err.Error()})
		return
	}

	h.form.OnAddressChange(*req.Address)
	c.JSON(http.StatusOK, h.form.Status())
}

// POST /api/form/abi
func (h *Handler) ChangeAbi(c *gin.Context) {
	var req changeAbiReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: err.Error()})
		return
	}

	h.form.OnAbiChange(*req.ABI)
	c.JSON(http.StatusOK, h.form.Status())
}

// POST /api/form/load
func (h *Handler) Load(c *gin.Context) {
	_, err := h.form.TriggerLoad()
	if err != nil {
		var loadErr *loader.LoadError
		if errors.As(err, &loadErr) {
			c.JSON(http.StatusUnprocessableEntity, loadRejectedRes{
				Reason: loadErr.Reason,
				Flags:  h.form.Flags(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{JSONKeyError: err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.form.Status())
}

// POST /api/form/reset
func (h *Handler) Reset(c *gin.Context) {
	h.form.Reset()
	c.JSON(http.StatusOK, h.form.Status())
}
