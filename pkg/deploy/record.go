package deploy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"rpsgame-deployer/pkg/logging"
	"rpsgame-deployer/pkg/utils"
)

// LatestRunFile is the file each network/chain directory keeps current.
const LatestRunFile = "run-latest.json"

// Transaction is one recorded contract creation.
type Transaction struct {
	Hash            string   `json:"hash"`
	TransactionType string   `json:"transactionType"`
	ContractName    string   `json:"contractName"`
	ContractAddress string   `json:"contractAddress"`
	From            string   `json:"from"`
	Arguments       []string `json:"arguments,omitempty"`
}

// Receipt is the subset of the mined receipt that is recorded.
type Receipt struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     uint64 `json:"blockNumber"`
	GasUsed         uint64 `json:"gasUsed"`
	ContractAddress string `json:"contractAddress"`
}

// Run is the record of one deployer invocation on one chain.
type Run struct {
	RunID        string        `json:"runId"`
	Network      string        `json:"network"`
	Chain        uint64        `json:"chain"`
	Timestamp    int64         `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
	Receipts     []Receipt     `json:"receipts"`
}

// Recorder writes deployment records below <dir>/<network>/<chainId>/.
// All results recorded through one Recorder belong to the same run.
type Recorder struct {
	dir    string
	runID  string
	start  time.Time
	runs   map[string]*Run
	logger zerolog.Logger
}

// NewRecorder starts a new run.
func NewRecorder(dir string) *Recorder {
	return &Recorder{
		dir:    dir,
		runID:  uuid.New().String(),
		start:  time.Now(),
		runs:   make(map[string]*Run),
		logger: logging.WithComponent("record"),
	}
}

// RunDir returns the directory that holds the records for network/chainID.
func RunDir(dir, network string, chainID uint64) string {
	return filepath.Join(dir, network, strconv.FormatUint(chainID, 10))
}

// Record appends res to the run and rewrites run-latest.json and the
// timestamped copy.
func (r *Recorder) Record(network string, res *Result) (string, error) {
	runDir := RunDir(r.dir, network, res.ChainID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "create %s", runDir)
	}

	key := runDir
	run, ok := r.runs[key]
	if !ok {
		run = &Run{
			RunID:     r.runID,
			Network:   network,
			Chain:     res.ChainID,
			Timestamp: r.start.Unix(),
		}
		r.runs[key] = run
	}
	run.Transactions = append(run.Transactions, Transaction{
		Hash:            res.TxHash.Hex(),
		TransactionType: "CREATE",
		ContractName:    res.Contract,
		ContractAddress: res.Address.Hex(),
		From:            res.Deployer.Hex(),
		Arguments:       res.Arguments,
	})
	run.Receipts = append(run.Receipts, Receipt{
		TransactionHash: res.TxHash.Hex(),
		BlockNumber:     res.BlockNumber,
		GasUsed:         res.GasUsed,
		ContractAddress: res.Address.Hex(),
	})

	latest := filepath.Join(runDir, LatestRunFile)
	if err := utils.WriteJSONToFile(latest, run); err != nil {
		return "", err
	}
	stamped := filepath.Join(runDir, fmt.Sprintf("run-%d.json", run.Timestamp))
	if err := utils.WriteJSONToFile(stamped, run); err != nil {
		return "", err
	}

	r.logger.Debug().Str("path", latest).Str("run_id", run.RunID).Msg("deployment recorded")
	return latest, nil
}

// ReadRun loads a recorded run.
func ReadRun(path string) (*Run, error) {
	var run Run
	if err := utils.ReadJSON(path, &run); err != nil {
		return nil, err
	}
	if run.Transactions == nil {
		return nil, eris.Errorf("%s has no transactions", path)
	}
	return &run, nil
}

// LatestRun returns the run-latest.json for network/chainID, or
// os.ErrNotExist when nothing was deployed there yet.
func LatestRun(dir, network string, chainID uint64) (*Run, error) {
	path := filepath.Join(RunDir(dir, network, chainID), LatestRunFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, eris.Wrapf(err, "no deployments for %s/%d", network, chainID)
	}
	return ReadRun(path)
}
