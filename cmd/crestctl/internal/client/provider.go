package client

import (
	"context"
	"net/http"
	"sync"

	"github.com/crestapp/crest-go/cmd/crestctl/internal/auth"
	"github.com/crestapp/crest-go/pkg/sdk"
	"golang.org/x/oauth2"
)

// Provider yields authenticated HTTP and SDK clients backed by the file
// credential store. Each piece is built once and shared by all commands.
type Provider struct {
	serverURL string

	storeOnce sync.Once
	store     sdk.CredentialStore
	storeErr  error

	httpOnce sync.Once
	httpCli  *http.Client
	httpErr  error

	sdkOnce   sync.Once
	sdkClient *sdk.Client
	sdkErr    error
}

// NewProvider constructs a new Provider bound to the given server URL.
func NewProvider(serverURL string) *Provider {
	return &Provider{serverURL: serverURL}
}

// CredentialStore returns the shared file-backed credential store.
func (p *Provider) CredentialStore() (sdk.CredentialStore, error) {
	p.storeOnce.Do(func() {
		p.store, p.storeErr = auth.NewFileStore()
	})
	return p.store, p.storeErr
}

// HTTPClient returns an http.Client that attaches the stored bearer token to
// every request. Without stored credentials it falls back to the default
// client; unauthenticated endpoints still work and the SDK decides how to
// treat the missing credential.
func (p *Provider) HTTPClient(ctx context.Context) (*http.Client, error) {
	p.httpOnce.Do(func() {
		store, err := p.CredentialStore()
		if err != nil {
			p.httpErr = err
			return
		}

		creds, err := store.LoadCredentials()
		if err != nil {
			p.httpErr = err
			return
		}
		if creds == nil {
			p.httpCli = http.DefaultClient
			return
		}

		token := &oauth2.Token{
			AccessToken: creds.Token,
			TokenType:   creds.TokenType,
		}
		source := oauth2.StaticTokenSource(token)
		p.httpCli = oauth2.NewClient(context.Background(), source)
	})

	if p.httpErr != nil {
		return nil, p.httpErr
	}
	return p.httpCli, nil
}

// SDKClient returns an authenticated SDK client backed by HTTPClient and the
// shared credential store.
func (p *Provider) SDKClient(ctx context.Context) (*sdk.Client, error) {
	p.sdkOnce.Do(func() {
		store, err := p.CredentialStore()
		if err != nil {
			p.sdkErr = err
			return
		}
		httpClient, err := p.HTTPClient(ctx)
		if err != nil {
			p.sdkErr = err
			return
		}

		p.sdkClient = sdk.NewClient(p.serverURL,
			sdk.WithHTTPClient(httpClient),
			sdk.WithCredentialStore(store),
		)
	})

	if p.sdkErr != nil {
		return nil, p.sdkErr
	}
	return p.sdkClient, nil
}
