// Package api exposes the contract over HTTP. Mutating endpoints act
// under the identity asserted by the X-Actor and X-Permission headers;
// the deployment is expected to put an authenticating proxy in front.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/trybenetwork/trybe/api/utils"
	"github.com/trybenetwork/trybe/authz"
	"github.com/trybenetwork/trybe/contract"
	"github.com/trybenetwork/trybe/reverts"
	"github.com/trybenetwork/trybe/trybe"
)

// ActorHeader asserts the authenticated account of a mutating request.
const ActorHeader = "X-Actor"

// PermissionHeader asserts the permission tier; defaults to active.
const PermissionHeader = "X-Permission"

// API routes contract operations.
type API struct {
	contract *contract.Contract
}

// New creates the API over the contract.
func New(c *contract.Contract) *API {
	return &API{contract: c}
}

// Mount attaches all routes under pathPrefix.
func (a *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/tokens").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(a.handleCreateToken))
	sub.Path("/tokens/{symbol}").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetToken))

	sub.Path("/accounts").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(a.handleRegisterAccount))
	sub.Path("/accounts/{name}/balances/{symbol}").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetBalance))
	sub.Path("/accounts/{name}/claim").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(a.handleClaim))

	sub.Path("/issuances").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(a.handleIssue))
	sub.Path("/transfers").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(a.handleTransfer))

	sub.Path("/stakes").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(a.handleStake))
	sub.Path("/stakes/{owner}").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetStake))
	sub.Path("/unstakes").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(a.handleUnstake))
	sub.Path("/refunds/{owner}").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetRefund))
	sub.Path("/refunds/{owner}/claim").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(a.handleRefundClaim))
	sub.Path("/founders").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(a.handleRegisterFounder))

	sub.Path("/prices").
		Methods(http.MethodPut).
		HandlerFunc(utils.WrapHandlerFunc(a.handleSetPrices))
	sub.Path("/prices").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(a.handleListPrices))

	sub.Path("/presale/setup").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(a.handleSetupPresale))
	sub.Path("/presale/deposits").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(a.handleDeposit))
	sub.Path("/presale/purchases/{name}").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetPurchase))
	sub.Path("/presale/stats").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetPresaleStats))

	sub.Path("/subscribers").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(a.handleSubscribe))
	sub.Path("/subscribers/{name}").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetSubscription))
	sub.Path("/subscribers/{name}").
		Methods(http.MethodDelete).
		HandlerFunc(utils.WrapHandlerFunc(a.handleUnsubscribe))
	sub.Path("/subscribers/{name}/confirm").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(a.handleConfirm))
}

// caller builds the authenticated capability from request headers.
func caller(r *http.Request) (authz.Caller, error) {
	actor, err := trybe.ParseName(r.Header.Get(ActorHeader))
	if err != nil {
		return authz.Caller{}, utils.Forbidden(errors.Wrap(err, "actor"))
	}
	switch perm := r.Header.Get(PermissionHeader); perm {
	case "", string(authz.PermissionActive):
		return authz.Active(actor), nil
	case string(authz.PermissionFounders):
		return authz.Founders(actor), nil
	default:
		return authz.Caller{}, utils.Forbidden(errors.Errorf("unknown permission %q", perm))
	}
}

// convertError maps operation rejections onto http statuses.
func convertError(err error) error {
	switch reverts.KindOf(err) {
	case "":
		return err
	case reverts.Unauthorized:
		return utils.Forbidden(err)
	case reverts.NotFound, reverts.UnknownAccount, reverts.NoStake, reverts.NoRefund:
		return utils.NotFound(err)
	case reverts.AlreadyExists, reverts.AlreadyClaimed, reverts.AlreadyFounder, reverts.AlreadySubscribed:
		return utils.Conflict(err)
	default:
		return utils.BadRequest(err)
	}
}

func (a *API) handleCreateToken(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	var req CreateTokenRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.Wrap(err, "body"))
	}
	issuer, err := trybe.ParseName(req.Issuer)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "issuer"))
	}
	maxSupply, err := trybe.ParseAsset(req.MaxSupply)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "maxSupply"))
	}
	if err := a.contract.CreateSymbol(c, issuer, maxSupply); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusCreated)
	return nil
}

func (a *API) handleGetToken(w http.ResponseWriter, r *http.Request) error {
	symbol, err := trybe.ParseSymbol(mux.Vars(r)["symbol"])
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "symbol"))
	}
	record, err := a.contract.GetSupply(symbol)
	if err != nil {
		return convertError(err)
	}
	if record == nil {
		return utils.NotFound(errors.New("token not found"))
	}
	return utils.WriteJSON(w, convertToken(symbol, record))
}

func (a *API) handleRegisterAccount(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	var req RegisterAccountRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.Wrap(err, "body"))
	}
	name, err := trybe.ParseName(req.Name)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "name"))
	}
	if err := a.contract.RegisterAccount(c, name); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusCreated)
	return nil
}

func (a *API) handleGetBalance(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)
	name, err := trybe.ParseName(vars["name"])
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "name"))
	}
	symbol, err := trybe.ParseSymbol(vars["symbol"])
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "symbol"))
	}
	balance, err := a.contract.GetBalance(name, symbol)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, &BalanceResponse{Account: string(name), Balance: balance.String()})
}

func (a *API) handleClaim(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	name, err := trybe.ParseName(mux.Vars(r)["name"])
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "name"))
	}
	if err := a.contract.Claim(c, name); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusCreated)
	return nil
}

func (a *API) handleIssue(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	var req IssueRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.Wrap(err, "body"))
	}
	to, err := trybe.ParseName(req.To)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "to"))
	}
	quantity, err := trybe.ParseAsset(req.Quantity)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "quantity"))
	}
	if err := a.contract.Issue(c, to, quantity, req.Memo); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *API) handleTransfer(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	var req TransferRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.Wrap(err, "body"))
	}
	from, err := trybe.ParseName(req.From)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "from"))
	}
	to, err := trybe.ParseName(req.To)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "to"))
	}
	quantity, err := trybe.ParseAsset(req.Quantity)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "quantity"))
	}
	if err := a.contract.Transfer(c, from, to, quantity, req.Memo); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *API) handleStake(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	var req StakeRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.Wrap(err, "body"))
	}
	from, err := trybe.ParseName(req.From)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "from"))
	}
	to, err := trybe.ParseName(req.To)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "to"))
	}
	quantity, err := trybe.ParseAsset(req.Quantity)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "quantity"))
	}
	if err := a.contract.Stake(c, from, to, quantity, req.AttributeToDelegate); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *API) handleGetStake(w http.ResponseWriter, r *http.Request) error {
	owner, err := trybe.ParseName(mux.Vars(r)["owner"])
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "owner"))
	}
	staked, err := a.contract.GetStaked(owner)
	if err != nil {
		return convertError(err)
	}
	aggregate, err := a.contract.GetAggregateStake(owner)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, &StakeResponse{
		Owner:     string(owner),
		Staked:    staked.String(),
		Aggregate: aggregate.String(),
	})
}

func (a *API) handleUnstake(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	var req UnstakeRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.Wrap(err, "body"))
	}
	owner, err := trybe.ParseName(req.Owner)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "owner"))
	}
	receiver, err := trybe.ParseName(req.Receiver)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "receiver"))
	}
	quantity, err := trybe.ParseAsset(req.Quantity)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "quantity"))
	}
	if err := a.contract.Unstake(c, owner, receiver, quantity); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *API) handleGetRefund(w http.ResponseWriter, r *http.Request) error {
	owner, err := trybe.ParseName(mux.Vars(r)["owner"])
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "owner"))
	}
	record, err := a.contract.GetRefund(owner)
	if err != nil {
		return convertError(err)
	}
	if record == nil {
		return utils.NotFound(errors.New("no pending refund"))
	}
	return utils.WriteJSON(w, convertRefund(owner, record))
}

func (a *API) handleRefundClaim(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	owner, err := trybe.ParseName(mux.Vars(r)["owner"])
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "owner"))
	}
	req := RefundClaimRequest{Settle: true}
	if r.ContentLength > 0 {
		if err := utils.ParseJSON(r.Body, &req); err != nil {
			return utils.BadRequest(errors.Wrap(err, "body"))
		}
	}
	if err := a.contract.RefundClaim(c, owner, req.Settle); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *API) handleRegisterFounder(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	var req RegisterFounderRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.Wrap(err, "body"))
	}
	founder, err := trybe.ParseName(req.Founder)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "founder"))
	}
	if err := a.contract.RegisterFounder(c, founder); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusCreated)
	return nil
}

func (a *API) handleSetPrices(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	var req SetPricesRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.Wrap(err, "body"))
	}
	symbols := make([]trybe.Symbol, 0, len(req.Symbols))
	for _, raw := range req.Symbols {
		symbol, err := trybe.ParseSymbol(raw)
		if err != nil {
			return utils.BadRequest(errors.Wrap(err, "symbols"))
		}
		symbols = append(symbols, symbol)
	}
	if err := a.contract.SetPrices(c, symbols, req.EOSPrices, req.USDPrices); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *API) handleListPrices(w http.ResponseWriter, _ *http.Request) error {
	records, err := a.contract.ListPrices()
	if err != nil {
		return convertError(err)
	}
	out := make([]*PriceResponse, 0, len(records))
	for _, record := range records {
		out = append(out, convertPrice(record))
	}
	return utils.WriteJSON(w, out)
}

func (a *API) handleSetupPresale(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	var req SetupPresaleRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.Wrap(err, "body"))
	}
	cap, err := trybe.ParseAsset(req.Cap)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "cap"))
	}
	if err := a.contract.SetupPresale(c, cap); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *API) handleDeposit(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	var req DepositRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.Wrap(err, "body"))
	}
	from, err := trybe.ParseName(req.From)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "from"))
	}
	quantity, err := trybe.ParseAsset(req.Quantity)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "quantity"))
	}
	if err := a.contract.Deposit(c, from, quantity, req.Memo); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *API) handleGetPurchase(w http.ResponseWriter, r *http.Request) error {
	name, err := trybe.ParseName(mux.Vars(r)["name"])
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "name"))
	}
	record, err := a.contract.GetPurchase(name)
	if err != nil {
		return convertError(err)
	}
	if record == nil {
		return utils.NotFound(errors.New("no presale purchase"))
	}
	return utils.WriteJSON(w, convertPurchase(record))
}

func (a *API) handleGetPresaleStats(w http.ResponseWriter, _ *http.Request) error {
	record, err := a.contract.GetPresaleStats()
	if err != nil {
		return convertError(err)
	}
	if record == nil {
		return utils.NotFound(errors.New("presale not set up"))
	}
	return utils.WriteJSON(w, convertPresaleStats(record))
}

func (a *API) handleSubscribe(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	var req SubscribeRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.Wrap(err, "body"))
	}
	subscriber, err := trybe.ParseName(req.Subscriber)
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "subscriber"))
	}
	if err := a.contract.Subscribe(c, subscriber, req.Status); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusCreated)
	return nil
}

func (a *API) handleGetSubscription(w http.ResponseWriter, r *http.Request) error {
	name, err := trybe.ParseName(mux.Vars(r)["name"])
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "name"))
	}
	record, err := a.contract.GetSubscription(name)
	if err != nil {
		return convertError(err)
	}
	if record == nil {
		return utils.NotFound(errors.New("subscriber not found"))
	}
	return utils.WriteJSON(w, convertSubscription(record))
}

func (a *API) handleUnsubscribe(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	name, err := trybe.ParseName(mux.Vars(r)["name"])
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "name"))
	}
	if err := a.contract.Unsubscribe(c, name); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *API) handleConfirm(w http.ResponseWriter, r *http.Request) error {
	c, err := caller(r)
	if err != nil {
		return err
	}
	name, err := trybe.ParseName(mux.Vars(r)["name"])
	if err != nil {
		return utils.BadRequest(errors.Wrap(err, "name"))
	}
	var req ConfirmRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.Wrap(err, "body"))
	}
	if err := a.contract.ConfirmSubscription(c, name, req.Status); err != nil {
		return convertError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
