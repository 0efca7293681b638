package coinafrique

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coinafrique-scraper/config"
	"coinafrique-scraper/renderer"
	"coinafrique-scraper/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		MaxRetries:       1,
		RateLimitMs:      0,
		ListSettle:       0,
		DetailSettle:     0,
		WaitTimeout:      50 * time.Millisecond,
		ImageWaitTimeout: 50 * time.Millisecond,
	}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	return c
}

func newTestScraper(t *testing.T, session renderer.Session) *Scraper {
	t.Helper()
	return New(testConfig(), utils.Discard(), session, testCatalog(t))
}

func listPage(hrefs ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="listing-cards">`)
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<div class="card"><a class="card-image" href="%s"><img src="x.jpg"></a></div>`, h)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

const villaDetail = `<html><body>
<h1 class="title">Villa R+1 à Ngor</h1>
<p class="price">150 000 000 CFA</p>
<div class="hide-on-med-and-down"><ul>
  <li><span class="qt">5</span> Pièces</li>
  <li><span class="qt">3</span> Salles de bain</li>
</ul></div>
<div class="extra-info-ad-detail"><div>Villas</div><div>Ngor, Dakar</div></div>
<div class="swiper-slide swiper-slide-active" style="background-image: url('https://images.coinafrique.com/villa-1.jpg');"></div>
</body></html>`

const apartmentDetailScanOnly = `<html><body>
<h1 class="title">Appartement 3 chambres Mermoz</h1>
<p class="price">450 000 CFA</p>
<div class="ad-details"><ul>
  <li>Superficie 120 m2</li>
  <li>3 chambres</li>
</ul></div>
<div class="extra-info-ad-detail">Mermoz, Dakar</div>
</body></html>`

// MockSession is a testify mock of renderer.Session.
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Navigate(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *MockSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	return m.Called(ctx, selector, timeout).Error(0)
}

func (m *MockSession) FindAll(ctx context.Context, selector string) ([]renderer.Element, error) {
	args := m.Called(ctx, selector)
	elems, _ := args.Get(0).([]renderer.Element)
	return elems, args.Error(1)
}

func (m *MockSession) FindFirst(ctx context.Context, selector string) (renderer.Element, error) {
	args := m.Called(ctx, selector)
	return args.Get(0).(renderer.Element), args.Error(1)
}

func (m *MockSession) Close() error {
	return m.Called().Error(0)
}
