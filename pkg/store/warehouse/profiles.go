package warehouse

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/snowflakedb/gosnowflake"
	"gopkg.in/ini.v1"
)

const (
	TypeDatabricks = "databricks"
	TypeSnowflake  = "snowflake"
)

// Profile is one section of the warehouse profiles file.
type Profile struct {
	Name string
	Type string
	Keys map[string]string
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (Profile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

// NewRegistry loads an ini file whose sections are warehouse profiles, in the
// style of ~/.databrickscfg.
func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load warehouse profiles: %w", err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	sort.Strings(profiles)
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (Profile, error) {
	section, err := cr.cfg.GetSection(name)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %s not found", name)
	}
	p := Profile{
		Name: name,
		Type: section.Key("type").MustString(TypeDatabricks),
		Keys: section.KeysHash(),
	}
	return p, nil
}

// DSN returns the database/sql driver name and data source for a profile.
func DSN(p Profile) (driver, dsn string, err error) {
	switch p.Type {
	case TypeDatabricks:
		host, token, path := p.Keys["host"], p.Keys["token"], p.Keys["http_path"]
		if host == "" || token == "" || path == "" {
			return "", "", fmt.Errorf("profile %s: databricks needs host, token and http_path", p.Name)
		}
		u, err := url.Parse(host)
		if err == nil && u.Host != "" {
			host = u.Host
		}
		dsn = fmt.Sprintf("token:%s@%s%s", token, host, path)

		params := url.Values{}
		if c := p.Keys["catalog"]; c != "" {
			params.Set("catalog", c)
		}
		if s := p.Keys["schema"]; s != "" {
			params.Set("schema", s)
		}
		if qp := params.Encode(); qp != "" {
			dsn += "?" + qp
		}
		return "databricks", dsn, nil

	case TypeSnowflake:
		cfg := &gosnowflake.Config{
			Account:   p.Keys["account"],
			User:      p.Keys["user"],
			Password:  p.Keys["password"],
			Database:  p.Keys["database"],
			Schema:    p.Keys["schema"],
			Warehouse: p.Keys["warehouse"],
			Role:      p.Keys["role"],
		}
		dsn, err := gosnowflake.DSN(cfg)
		if err != nil {
			return "", "", fmt.Errorf("profile %s: failed to create DSN: %w", p.Name, err)
		}
		return "snowflake", dsn, nil

	default:
		return "", "", fmt.Errorf("profile %s: unsupported warehouse type %q", p.Name, p.Type)
	}
}
