package extract

import (
	"regexp"
	"strings"
	"time"

	"nicodb/internal/domain"
)

const (
	programIDPrefix = "lv"
	channelIDPrefix = "ch"
)

// Provider types found in program.providerType
const (
	providerCommunity = "community"
	providerChannel   = "channel"
	providerOfficial  = "official"
)

var digitsPattern = regexp.MustCompile(`^\d+$`)

// requiredProgramFields are checked in this order; the first absent one is reported
var requiredProgramFields = []string{
	"nicoliveProgramId",
	"title",
	"beginTime",
	"endTime",
	"status",
	"providerType",
}

var requiredSocialGroupFields = []string{"id", "name", "companyName"}

// Normalizer maps a decoded payload onto a StreamRecord
type Normalizer struct {
	placeholders domain.Placeholders
}

// NewNormalizer creates a normalizer that fills absent streamer or channel
// data with the given placeholders
func NewNormalizer(placeholders domain.Placeholders) *Normalizer {
	return &Normalizer{placeholders: placeholders}
}

// Normalize validates the payload and builds a StreamRecord.
//
// Presence is checked before values: program, then program.nicoliveProgramId,
// title, beginTime, endTime, status, providerType, then socialGroup.id, name
// and companyName for channel and official programs. Values are then checked
// in the same order, with the time range last.
func (n *Normalizer) Normalize(payload *Payload) (domain.StreamRecord, error) {
	program, err := payload.Get("program")
	if err != nil {
		return domain.StreamRecord{}, err
	}
	if err := program.Require(requiredProgramFields...); err != nil {
		return domain.StreamRecord{}, err
	}

	providerType, _ := program.Text("providerType")
	var socialGroup *Payload
	if providerType == providerChannel || providerType == providerOfficial {
		socialGroup, err = payload.Get("socialGroup")
		if err != nil {
			return domain.StreamRecord{}, err
		}
		if err := socialGroup.Require(requiredSocialGroupFields...); err != nil {
			return domain.StreamRecord{}, err
		}
	}

	externalID, err := programExternalID(program)
	if err != nil {
		return domain.StreamRecord{}, err
	}
	title, err := program.Text("title")
	if err != nil {
		return domain.StreamRecord{}, err
	}
	begin, err := program.Int64("beginTime")
	if err != nil {
		return domain.StreamRecord{}, err
	}
	end, err := program.Int64("endTime")
	if err != nil {
		return domain.StreamRecord{}, err
	}
	statusName, err := program.Text("status")
	if err != nil {
		return domain.StreamRecord{}, err
	}
	status, err := domain.ParseStatus(statusName)
	if err != nil {
		return domain.StreamRecord{}, err
	}
	providerType, err = program.Text("providerType")
	if err != nil {
		return domain.StreamRecord{}, err
	}

	in := domain.StreamRecordInput{
		ExternalID: externalID,
		Title:      title,
		StartTime:  time.Unix(begin, 0).UTC(),
		EndTime:    time.Unix(end, 0).UTC(),
		Status:     status,
	}

	switch providerType {
	case providerCommunity:
		in.ProviderKind = domain.ProviderUser
		if err := n.applySupplier(&in, program); err != nil {
			return domain.StreamRecord{}, err
		}
	case providerChannel, providerOfficial:
		in.ProviderKind = domain.ProviderChannel
		if providerType == providerOfficial {
			in.ProviderKind = domain.ProviderCompany
		}
		if err := n.applySocialGroup(&in, socialGroup); err != nil {
			return domain.StreamRecord{}, err
		}
	default:
		return domain.StreamRecord{}, &domain.UnknownProviderTypeError{ProgramID: externalID, Value: providerType}
	}

	return domain.NewStreamRecord(in)
}

// applySupplier fills the streamer from program.supplier. The id and the name
// fall back to placeholders independently; the channel is the placeholder channel.
func (n *Normalizer) applySupplier(in *domain.StreamRecordInput, program *Payload) error {
	in.StreamerExternalID = n.placeholders.StreamerID
	in.StreamerName = n.placeholders.StreamerName
	in.ChannelExternalID = n.placeholders.ChannelID
	in.ChannelName = n.placeholders.ChannelName
	in.CompanyName = n.placeholders.CompanyName

	if !program.Has("supplier") {
		return nil
	}
	supplier, err := program.Get("supplier")
	if err != nil {
		return err
	}

	if supplier.Has("programProviderId") {
		id, err := supplier.ID("programProviderId", "")
		if err != nil {
			return err
		}
		in.StreamerExternalID = id
	}
	if supplier.Has("name") {
		name, err := supplier.Text("name")
		if err != nil {
			return err
		}
		in.StreamerName = name
	}
	return nil
}

// applySocialGroup fills the channel from socialGroup; the streamer is the placeholder streamer
func (n *Normalizer) applySocialGroup(in *domain.StreamRecordInput, socialGroup *Payload) error {
	in.StreamerExternalID = n.placeholders.StreamerID
	in.StreamerName = n.placeholders.StreamerName

	id, err := socialGroup.ID("id", channelIDPrefix)
	if err != nil {
		return err
	}
	name, err := socialGroup.Text("name")
	if err != nil {
		return err
	}
	company, err := socialGroup.Text("companyName")
	if err != nil {
		return err
	}

	in.ChannelExternalID = id
	in.ChannelName = name
	in.CompanyName = company
	return nil
}

// programExternalID strips the "lv" prefix and requires the rest to be digits
func programExternalID(program *Payload) (string, error) {
	raw, err := program.Text("nicoliveProgramId")
	if err != nil {
		return "", err
	}

	id := strings.TrimPrefix(raw, programIDPrefix)
	if !digitsPattern.MatchString(id) {
		return "", &domain.InvalidFieldError{Field: "program.nicoliveProgramId", Value: raw, Reason: "not lv followed by digits"}
	}
	return id, nil
}
