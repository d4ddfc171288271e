package iserv

import (
	"context"
	"fmt"
	"iserv-client/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ProfileFields lists the public profile fields in the order the portal shows them.
var ProfileFields = []string{
	"title",
	"company",
	"birthday",
	"nickname",
	"class",
	"street",
	"zipcode",
	"city",
	"country",
	"icq",
	"jabber",
	"msn",
	"skype",
	"note",
	"phone",
	"mobilePhone",
	"fax",
	"mail",
	"homepage",
}

// tokenField holds the anti-forgery token of the profile form, it is stored
// in PublicInfo next to the actual fields.
const tokenField = "_token"

// the unordered lists under this container are, in order: groups, roles, rights
const profileListContainer = "body > div > div:nth-of-type(2) > div:nth-of-type(3) > div > div > div:nth-of-type(2) > div > div > div > div"

type UserInfo struct {
	// Groups maps the name of a group to the link of its page.
	Groups map[string]string
	Roles  []string
	Rights []string
	// PublicInfo maps each entry of ProfileFields (and "_token") to its current value.
	PublicInfo map[string]string
}

func profileList(doc *goquery.Document, n int) *goquery.Selection {
	return doc.Find(fmt.Sprintf("%s > ul:nth-of-type(%d)", profileListContainer, n))
}

func (c *Client) parseProfile(doc *goquery.Document, info *UserInfo) {
	groups := profileList(doc, 1)
	for _, a := range htmlutil.GetAnchors(c.BaseUrl, groups.Find("a")) {
		info.Groups[a.Name] = a.Href
	}
	info.Roles = append(info.Roles, htmlutil.GetTexts(profileList(doc, 2).Find("li"))...)
	info.Rights = append(info.Rights, htmlutil.GetTexts(profileList(doc, 3).Find("li"))...)

	if groups.Length() == 0 {
		c.tel.ReportWarning(report_client_own_user_info, "groups list not found")
	}
}

func (c *Client) parsePublicInfo(doc *goquery.Document, info *UserInfo) {
	for _, field := range append(ProfileFields, tokenField) {
		id := fmt.Sprintf("publiccontact_%s", field)

		if field == "note" {
			textarea := doc.Find(fmt.Sprintf("textarea#%s", id))
			if textarea.Length() == 0 {
				c.tel.ReportWarning(report_client_own_user_info, fmt.Errorf("no data in %s", id))
				info.PublicInfo[field] = ""
				continue
			}
			info.PublicInfo[field] = textarea.First().Text()
			continue
		}

		value, ok := doc.Find(fmt.Sprintf("input#%s", id)).First().Attr("value")
		if !ok {
			c.tel.ReportWarning(report_client_own_user_info, fmt.Errorf("no data in %s", id))
			info.PublicInfo[field] = ""
			continue
		}
		info.PublicInfo[field] = value
	}
}

// OwnUserInfo reads the groups, roles and rights of the logged in user along
// with the fields of their public profile.
func (c *Client) OwnUserInfo(ctx context.Context) (UserInfo, error) {
	info := UserInfo{
		Groups:     map[string]string{},
		Roles:      []string{},
		Rights:     []string{},
		PublicInfo: map[string]string{},
	}

	profile, _, err := c.getDocument(ctx, report_client_own_user_info, "/iserv/profile", nil)
	if err != nil {
		return UserInfo{}, err
	}
	c.parseProfile(profile, &info)

	edit, _, err := c.getDocument(ctx, report_client_own_user_info, "/iserv/profile/public/edit", nil)
	if err != nil {
		return UserInfo{}, err
	}
	c.parsePublicInfo(edit, &info)

	c.tel.ReportDebug("got own user info", len(info.Groups), len(info.Roles), len(info.Rights))
	return info, nil
}
