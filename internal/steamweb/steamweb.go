// Package steamweb resolves Steam identities and lists inventories. It
// sits in front of the valuation core: the deduplicated item names it
// produces are what the batch orchestrator values.
package steamweb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"skinvalue/internal/httpx"
)

// Config controls the Steam web client.
type Config struct {
	// APIKey is a Steam Web API key. Without it, numeric IDs still
	// resolve but vanity names do not.
	APIKey string
	// CommunityURL and APIURL override the Steam hosts, mainly for tests.
	CommunityURL string
	APIURL       string
	// AppID and ContextID select the inventory (CS2: 730/2).
	AppID     int
	ContextID int
}

type Client struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Client {
	if cfg.CommunityURL == "" {
		cfg.CommunityURL = "https://steamcommunity.com"
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.steampowered.com"
	}
	if cfg.AppID == 0 {
		cfg.AppID = 730
	}
	if cfg.ContextID == 0 {
		cfg.ContextID = 2
	}
	return &Client{cfg: cfg, client: hc}
}

var (
	reProfiles  = regexp.MustCompile(`/profiles/(\d{17})`)
	reVanity    = regexp.MustCompile(`/id/([^/]+)`)
	reSteamID64 = regexp.MustCompile(`^\d{17}$`)
)

// Resolve maps a raw profile URL, a vanity path segment or a bare numeric
// identifier to a canonical SteamID64. An unresolvable input returns
// ("", nil); only transport failures return an error.
func (c *Client) Resolve(ctx context.Context, input string) (string, error) {
	candidate := strings.TrimSpace(input)
	if candidate == "" {
		return "", nil
	}
	if u, err := url.Parse(candidate); err == nil && u.Host != "" {
		candidate = strings.TrimSuffix(u.Path, "/")
	}
	if m := reProfiles.FindStringSubmatch(candidate); m != nil {
		return m[1], nil
	}
	if m := reVanity.FindStringSubmatch(candidate); m != nil {
		return c.resolveVanity(ctx, m[1])
	}
	if reSteamID64.MatchString(candidate) {
		return candidate, nil
	}
	return c.resolveVanity(ctx, candidate)
}

type vanityResponse struct {
	Response struct {
		Success int    `json:"success"`
		SteamID string `json:"steamid"`
	} `json:"response"`
}

func (c *Client) resolveVanity(ctx context.Context, vanity string) (string, error) {
	if c.cfg.APIKey == "" {
		// Numeric IDs pass through without a key; vanity needs one.
		if reSteamID64.MatchString(vanity) {
			return vanity, nil
		}
		return "", nil
	}
	u := fmt.Sprintf("%s/ISteamUser/ResolveVanityURL/v1/?key=%s&vanityurl=%s",
		c.cfg.APIURL, url.QueryEscape(c.cfg.APIKey), url.QueryEscape(vanity))
	var body vanityResponse
	if err := c.client.GetJSON(ctx, u, nil, &body); err != nil {
		return "", fmt.Errorf("resolve vanity: %w", err)
	}
	if body.Response.Success != 1 {
		return "", nil
	}
	return body.Response.SteamID, nil
}

// Holding is one inventory line aggregated by market hash name.
type Holding struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Count int    `json:"count"`
}

const iconBase = "https://steamcommunity-a.akamaihd.net/economy/image/"

type inventoryResponse struct {
	Assets []struct {
		AssetID    string `json:"assetid"`
		ClassID    string `json:"classid"`
		InstanceID string `json:"instanceid"`
	} `json:"assets"`
	Descriptions []struct {
		ClassID        string `json:"classid"`
		InstanceID     string `json:"instanceid"`
		Name           string `json:"name"`
		MarketName     string `json:"market_name"`
		MarketHashName string `json:"market_hash_name"`
		IconURL        string `json:"icon_url"`
		IconURLLarge   string `json:"icon_url_large"`
	} `json:"descriptions"`
}

// FetchHoldings lists the inventory for a SteamID64, joined with item
// descriptions and aggregated by market hash name in first-seen order.
// A private or missing inventory returns (nil, nil); the caller decides
// how to surface that.
func (c *Client) FetchHoldings(ctx context.Context, steamID string) ([]Holding, error) {
	u := fmt.Sprintf("%s/inventory/%s/%d/%d?l=en&count=5000",
		c.cfg.CommunityURL, url.PathEscape(steamID), c.cfg.AppID, c.cfg.ContextID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch inventory: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Steam answers non-2xx for private or empty inventories.
		return nil, nil
	}
	var inv inventoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&inv); err != nil {
		return nil, nil
	}
	if len(inv.Assets) == 0 || len(inv.Descriptions) == 0 {
		return nil, nil
	}

	descKey := func(classID, instanceID string) string {
		if instanceID == "" {
			instanceID = "0"
		}
		return classID + "_" + instanceID
	}
	type desc struct{ name, icon string }
	descs := make(map[string]desc, len(inv.Descriptions))
	for _, d := range inv.Descriptions {
		name := d.MarketHashName
		if name == "" {
			name = d.MarketName
		}
		if name == "" {
			name = d.Name
		}
		icon := d.IconURL
		if icon == "" {
			icon = d.IconURLLarge
		}
		if icon != "" {
			icon = iconBase + icon
		}
		descs[descKey(d.ClassID, d.InstanceID)] = desc{name: name, icon: icon}
	}

	var order []string
	counts := make(map[string]*Holding)
	for _, a := range inv.Assets {
		d, ok := descs[descKey(a.ClassID, a.InstanceID)]
		if !ok || d.name == "" {
			continue
		}
		h, ok := counts[d.name]
		if !ok {
			h = &Holding{Name: d.name, Icon: d.icon}
			counts[d.name] = h
			order = append(order, d.name)
		}
		h.Count++
		if h.Icon == "" && d.icon != "" {
			h.Icon = d.icon
		}
	}

	out := make([]Holding, 0, len(order))
	for _, name := range order {
		out = append(out, *counts[name])
	}
	return out, nil
}

// Names returns the deduplicated display names of a holding list, in order.
func Names(holdings []Holding) []string {
	out := make([]string, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, h.Name)
	}
	return out
}
