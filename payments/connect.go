package payments

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrAccountNotFound = errors.New("stripe account not found")

type AccountStatus struct {
	AccountID        string   `json:"accountId"`
	ChargesEnabled   bool     `json:"chargesEnabled"`
	PayoutsEnabled   bool     `json:"payoutsEnabled"`
	DetailsSubmitted bool     `json:"detailsSubmitted"`
	CurrentlyDue     []string `json:"currentlyDue,omitempty"`
}

// Amount is in the currency's minor unit, as Stripe reports it.
type Amount struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type Balance struct {
	Available []Amount `json:"available"`
	Pending   []Amount `json:"pending"`
}

type Payout struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type CreateAccountRequest struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Country string `json:"country"`
}

// ConnectClient calls the companion backend's /api/stripe endpoints.
type ConnectClient struct {
	http jsonClient
}

func NewConnectClient(baseURL string) *ConnectClient {
	return &ConnectClient{http: newJSONClient(baseURL)}
}

func (c *ConnectClient) CreateAccount(ctx context.Context, req CreateAccountRequest) (string, error) {
	res, err := c.http.do(ctx, http.MethodPost, "/api/stripe/create-connected-account", req)
	if err != nil {
		return "", err
	}
	id := firstString(res, "accountId", "account.id", "id")
	if id == "" {
		return "", errors.New("create account: backend returned no account id")
	}
	return id, nil
}

func (c *ConnectClient) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	res, err := c.http.do(ctx, http.MethodPost, "/api/stripe/create-account-link", map[string]string{
		"accountId":  accountID,
		"refreshUrl": refreshURL,
		"returnUrl":  returnURL,
	})
	if err != nil {
		return "", mapAccountError(err)
	}
	link := firstString(res, "url", "link", "accountLink.url")
	if link == "" {
		return "", errors.New("create account link: backend returned no url")
	}
	return link, nil
}

func (c *ConnectClient) AccountStatus(ctx context.Context, accountID string) (AccountStatus, error) {
	res, err := c.http.do(ctx, http.MethodGet, "/api/stripe/account-status/"+url.PathEscape(accountID), nil)
	if err != nil {
		return AccountStatus{}, mapAccountError(err)
	}
	acct := res
	if a := res.Get("account"); a.IsObject() {
		acct = a
	}
	st := AccountStatus{
		AccountID:        accountID,
		ChargesEnabled:   boolAt(acct, "chargesEnabled", "charges_enabled"),
		PayoutsEnabled:   boolAt(acct, "payoutsEnabled", "payouts_enabled"),
		DetailsSubmitted: boolAt(acct, "detailsSubmitted", "details_submitted"),
	}
	for _, r := range acct.Get("requirements.currently_due").Array() {
		st.CurrentlyDue = append(st.CurrentlyDue, r.String())
	}
	return st, nil
}

func (c *ConnectClient) Balance(ctx context.Context, accountID string) (Balance, error) {
	res, err := c.http.do(ctx, http.MethodGet, "/api/stripe/balance/"+url.PathEscape(accountID), nil)
	if err != nil {
		return Balance{}, mapAccountError(err)
	}
	bal := res
	if b := res.Get("balance"); b.IsObject() {
		bal = b
	}
	return Balance{
		Available: amounts(bal.Get("available")),
		Pending:   amounts(bal.Get("pending")),
	}, nil
}

func (c *ConnectClient) Payout(ctx context.Context, accountID string, amount int64, currency string) (Payout, error) {
	res, err := c.http.do(ctx, http.MethodPost, "/api/stripe/create-payout", map[string]any{
		"accountId": accountID,
		"amount":    amount,
		"currency":  strings.ToLower(currency),
	})
	if err != nil {
		return Payout{}, mapAccountError(err)
	}
	p := res
	if po := res.Get("payout"); po.IsObject() {
		p = po
	}
	return Payout{
		ID:       firstString(p, "id", "payoutId"),
		Status:   firstString(p, "status"),
		Amount:   p.Get("amount").Int(),
		Currency: strings.ToUpper(firstString(p, "currency")),
	}, nil
}

// mapAccountError turns 404s and Stripe's "No such account" message into ErrAccountNotFound.
func mapAccountError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusNotFound || strings.Contains(strings.ToLower(apiErr.Message), "no such account") {
			return ErrAccountNotFound
		}
	}
	return err
}

func boolAt(res gjson.Result, paths ...string) bool {
	for _, p := range paths {
		if v := res.Get(p); v.Exists() {
			return v.Bool()
		}
	}
	return false
}

func amounts(res gjson.Result) []Amount {
	out := []Amount{}
	for _, a := range res.Array() {
		out = append(out, Amount{
			Amount:   a.Get("amount").Int(),
			Currency: strings.ToUpper(a.Get("currency").String()),
		})
	}
	return out
}
