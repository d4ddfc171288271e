package iserv

import (
	"context"
	"fmt"
	"net/url"
	"slices"
)

// profileFieldAliases maps alternative names callers may use to the field they refer to.
var profileFieldAliases = map[string]string{
	"_class": "class",
}

func profileFormKey(field string) string {
	return fmt.Sprintf("publiccontact[%s]", field)
}

// buildProfileForm returns the full form to submit when editing the public
// profile, fields that are not overridden keep their current value.
func buildProfileForm(current map[string]string, overrides map[string]string) (form map[string]string, changed []string) {
	form = map[string]string{}
	for _, field := range ProfileFields {
		form[profileFormKey(field)] = current[field]
	}
	form[profileFormKey("hidden")] = "0"
	form["publiccontact[actions][submit]"] = ""
	form[profileFormKey(tokenField)] = url.QueryEscape(current[tokenField])

	for key, value := range overrides {
		field := key
		if alias, ok := profileFieldAliases[key]; ok {
			field = alias
		}
		if !slices.Contains(ProfileFields, field) {
			continue
		}
		form[profileFormKey(field)] = value
		changed = append(changed, field)
	}
	slices.Sort(changed)
	return form, changed
}

// SetOwnUserInfo updates the public profile of the logged in user. Keys of
// `overrides` that are not in ProfileFields (or "_class") are ignored.
//
// The response status code is returned as is, the portal does not report
// whether the edit was accepted in any other way.
func (c *Client) SetOwnUserInfo(ctx context.Context, overrides map[string]string) (int, error) {
	info, err := c.OwnUserInfo(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: read current profile: %w", report_client_set_own_user_info, err)
	}

	form, changed := buildProfileForm(info.PublicInfo, overrides)
	for _, field := range changed {
		c.tel.ReportDebug("profile field changed", field)
	}

	res, err := c.postWithSessionCookies(ctx, report_client_set_own_user_info, "/iserv/profile/public/edit", form)
	if err != nil {
		return 0, err
	}
	return res.StatusCode(), nil
}
